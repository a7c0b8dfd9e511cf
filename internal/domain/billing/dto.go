// internal/domain/billing/dto.go
package billing

import "time"

type ContactSalesRequest struct {
	FirstName   string `json:"first_name" binding:"required,min=1,max=255"`
	LastName    string `json:"last_name" binding:"required,min=1,max=255"`
	CompanyName string `json:"company_name" binding:"required,min=1,max=255"`
	WorkEmail   string `json:"work_email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,min=1"`
	Message     string `json:"message" binding:"required,min=1,max=5000"`
}

type ContactSalesResponse struct {
	Reference        string    `json:"reference"`
	OrganizationSlug string    `json:"organization_slug"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

type PriceLookupQuery struct {
	Tier     Tier     `form:"tier" binding:"required"`
	Interval Interval `form:"interval" binding:"required"`
}

type PriceLookupResponse struct {
	PriceID  string   `json:"price_id"`
	Tier     Tier     `json:"tier"`
	Interval Interval `json:"interval"`
}
