// internal/handlers/webhook/stripe_handler.go
package webhook

import (
	"context"
	"io"
	"net/http"
	"strings"

	"orgbilling-service/internal/pkg/response"
	"orgbilling-service/internal/service/stripesync"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

const (
	stripeWebhookBodyLimit = 1024 * 1024 // 1MiB
	stripeSignatureHeader  = "Stripe-Signature"
)

// EventApplier synchronizes one verified event into local storage.
type EventApplier interface {
	Apply(ctx context.Context, event *stripe.Event) stripesync.Outcome
}

// Deduper tracks delivered event ids.
type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	MarkProcessed(ctx context.Context, id string) (bool, error)
}

// StripeHandler receives Stripe webhooks. The signature is the only authentication.
type StripeHandler struct {
	secret  string
	applier EventApplier
	deduper Deduper
	logger  *zap.Logger
}

func NewStripeHandler(secret string, applier EventApplier, deduper Deduper, logger *zap.Logger) *StripeHandler {
	return &StripeHandler{
		secret:  strings.TrimSpace(secret),
		applier: applier,
		deduper: deduper,
		logger:  logger,
	}
}

// HandleWebhook verifies, deduplicates and applies a delivery.
func (h *StripeHandler) HandleWebhook(c *gin.Context) {
	if h.secret == "" {
		response.Error(c, http.StatusServiceUnavailable, "stripe webhook secret is not configured", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, stripeWebhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read request body", nil)
		return
	}

	sigHeader := c.GetHeader(stripeSignatureHeader)
	if strings.TrimSpace(sigHeader) == "" {
		response.Error(c, http.StatusBadRequest, "invalid stripe signature", nil)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.logger.Warn("rejected stripe webhook", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "invalid stripe signature", nil)
		return
	}

	ctx := c.Request.Context()
	log := h.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	if h.alreadyProcessed(ctx, log, event.ID) {
		log.Info("duplicate stripe event acknowledged")
		response.Acknowledge(c)
		return
	}

	outcome := h.applier.Apply(ctx, &event)
	h.markProcessed(ctx, log, event.ID, outcome)

	response.Acknowledge(c)
}

func (h *StripeHandler) alreadyProcessed(ctx context.Context, log *zap.Logger, id string) bool {
	if h.deduper == nil {
		return false
	}
	seen, err := h.deduper.Seen(ctx, id)
	if err != nil {
		// Handlers are idempotent, so a lookup failure only costs a re-run.
		log.Warn("stripe event dedup lookup failed", zap.Error(err))
		return false
	}
	return seen
}

// markProcessed records the event unless it failed; a failed event stays
// eligible for a dashboard resend of the same id.
func (h *StripeHandler) markProcessed(ctx context.Context, log *zap.Logger, id string, outcome stripesync.Outcome) {
	if h.deduper == nil || outcome == stripesync.OutcomeFailed {
		return
	}
	if _, err := h.deduper.MarkProcessed(ctx, id); err != nil {
		log.Warn("failed to record processed stripe event",
			zap.String("outcome", string(outcome)),
			zap.Error(err))
	}
}
