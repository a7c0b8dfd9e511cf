// internal/app/router.go
package app

import (
	"net/http"

	billingHandler "orgbilling-service/internal/handlers/billing"
	webhookHandler "orgbilling-service/internal/handlers/webhook"
	"orgbilling-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	BillingHandler *billingHandler.BillingHandler
	StripeHandler  *webhookHandler.StripeHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Health Check ====================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Stripe Webhooks ====================
	// Authenticated by signature, never by bearer token.
	r.POST("/webhooks/stripe", h.StripeHandler.HandleWebhook)

	api := r.Group("/api/v1")

	// ==================== Public Billing Routes ====================
	api.GET("/billing/prices", h.BillingHandler.GetPriceID)

	// ==================== Organization Billing ====================
	orgBilling := api.Group("/organizations/:slug/billing")
	orgBilling.Use(h.AuthMiddleware.Auth())
	{
		orgBilling.GET("", h.BillingHandler.GetBillingPage)
		orgBilling.POST("/contact-sales", h.BillingHandler.ContactSales)
	}
}
