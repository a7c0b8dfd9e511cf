// internal/service/billing/contact_sales.go
package billing

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"orgbilling-service/internal/domain/billing"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	ContactSalesMaxAttempts = 3
	ContactSalesWindow      = time.Hour
)

// Mailer sends an HTML email.
type Mailer interface {
	Send(to, subject, bodyHTML string) error
}

// Limiter counts attempts per key inside a window.
type Limiter interface {
	Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, int64, error)
	Refund(ctx context.Context, key string) error
}

type ContactSalesService struct {
	billing    *BillingService
	limiter    Limiter
	mailer     Mailer
	salesEmail string
	logger     *zap.Logger
}

func NewContactSalesService(billingSvc *BillingService, limiter Limiter, mailer Mailer, salesEmail string, logger *zap.Logger) *ContactSalesService {
	return &ContactSalesService{
		billing:    billingSvc,
		limiter:    limiter,
		mailer:     mailer,
		salesEmail: salesEmail,
		logger:     logger,
	}
}

// Submit forwards an enterprise enquiry from a member of the organization at slug
// to the sales inbox.
func (s *ContactSalesService) Submit(ctx context.Context, slug, userID string, req *billing.ContactSalesRequest) (*billing.ContactSalesResponse, error) {
	if s.salesEmail == "" {
		return nil, fmt.Errorf("sales inbox is not configured: %w", xerrors.ErrUnavailable)
	}

	org, err := s.billing.AuthorizeMember(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.WorkEmail))
	allowed, _, err := s.limiter.Allow(ctx, email, ContactSalesMaxAttempts, ContactSalesWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to check contact sales limit: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("too many contact sales requests for %s: %w", email, xerrors.ErrRateLimited)
	}

	now := s.billing.now().UTC()
	reference := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	subject := fmt.Sprintf("Enterprise enquiry from %s (%s)", req.CompanyName, org.Slug)
	if err := s.mailer.Send(s.salesEmail, subject, contactSalesBody(reference, org.Slug, req)); err != nil {
		s.logger.Error("failed to send contact sales email",
			zap.String("organization_id", org.ID),
			zap.String("reference", reference),
			zap.Error(err))
		// A delivery failure is ours, not the visitor's; give the attempt back.
		if refundErr := s.limiter.Refund(ctx, email); refundErr != nil {
			s.logger.Warn("failed to refund contact sales attempt", zap.Error(refundErr))
		}
		return nil, fmt.Errorf("failed to send contact sales email: %w", err)
	}

	s.logger.Info("contact sales request submitted",
		zap.String("organization_id", org.ID),
		zap.String("reference", reference))

	return &billing.ContactSalesResponse{
		Reference:        reference,
		OrganizationSlug: org.Slug,
		SubmittedAt:      now,
	}, nil
}

func contactSalesBody(reference, slug string, req *billing.ContactSalesRequest) string {
	rows := [][2]string{
		{"Reference", reference},
		{"Organization", slug},
		{"Name", req.FirstName + " " + req.LastName},
		{"Company", req.CompanyName},
		{"Work email", req.WorkEmail},
		{"Phone", req.PhoneNumber},
	}

	var b strings.Builder
	b.WriteString("<p>A new enterprise enquiry was submitted.</p>\n<table class=\"fields\">\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>\n", row[0], html.EscapeString(row[1]))
	}
	b.WriteString("</table>\n")
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(req.Message), "\n", "<br>"))
	return b.String()
}
