// internal/handlers/billing/billing_handler.go
package billing

import (
	"net/http"

	"orgbilling-service/internal/domain/billing"
	"orgbilling-service/internal/middleware"
	"orgbilling-service/internal/pkg/response"
	service "orgbilling-service/internal/service/billing"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingService      *service.BillingService
	contactSalesService *service.ContactSalesService
}

func NewBillingHandler(billingService *service.BillingService, contactSalesService *service.ContactSalesService) *BillingHandler {
	return &BillingHandler{
		billingService:      billingService,
		contactSalesService: contactSalesService,
	}
}

// ========== Member Endpoints ==========

// GetBillingPage returns the billing settings of an organization
func (h *BillingHandler) GetBillingPage(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	page, err := h.billingService.GetBillingPage(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		response.FromError(c, "failed to get billing page", err)
		return
	}

	response.Success(c, http.StatusOK, "billing page retrieved", page)
}

// ContactSales forwards an enterprise enquiry to the sales team
func (h *BillingHandler) ContactSales(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req billing.ContactSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.contactSalesService.Submit(c.Request.Context(), c.Param("slug"), userID, &req)
	if err != nil {
		response.FromError(c, "failed to contact sales", err)
		return
	}

	response.Success(c, http.StatusCreated, "contact sales request submitted", result)
}

// ========== Public Endpoints ==========

// GetPriceID resolves ?tier=&interval= to a catalog price id
func (h *BillingHandler) GetPriceID(c *gin.Context) {
	var query billing.PriceLookupQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, "invalid query parameters", err)
		return
	}

	result, err := h.billingService.LookupPrice(query.Tier, query.Interval)
	if err != nil {
		response.FromError(c, "failed to resolve price", err)
		return
	}

	response.Success(c, http.StatusOK, "price resolved", result)
}
