package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orgbilling-service/internal/domain/billing"
	"orgbilling-service/internal/domain/organization"
	"orgbilling-service/internal/middleware"
	"orgbilling-service/internal/pkg/ratelimit"
	service "orgbilling-service/internal/service/billing"
	"orgbilling-service/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type noopMailer struct{ sent int }

func (m *noopMailer) Send(to, subject, body string) error {
	m.sent++
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T, mailer *noopMailer) *gin.Engine {
	t.Helper()
	org := organization.Organization{
		ID:           "org_1",
		Name:         "Acme",
		Slug:         "acme",
		BillingEmail: "billing@acme.test",
		TrialEnd:     testNow.Add(7 * 24 * time.Hour),
	}
	orgs := testutil.NewInMemoryOrganizationStore(org)
	memberships := testutil.NewInMemoryMembershipStore(
		organization.Membership{MemberID: "user_1", OrganizationID: org.ID, Role: organization.RoleOwner},
		organization.Membership{MemberID: "user_2", OrganizationID: org.ID, Role: organization.RoleMember},
	)
	prices := testutil.NewInMemoryPriceStore()
	schedules := testutil.NewInMemorySubscriptionScheduleStore()
	subs := testutil.NewInMemorySubscriptionStore(prices, schedules)

	billingSvc := service.NewBillingService(orgs, memberships, subs, zap.NewNop()).
		WithClock(func() time.Time { return testNow })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	contactSvc := service.NewContactSalesService(billingSvc, ratelimit.NewRateLimiter(client, "contact_sales"), mailer, "sales@example.com", zap.NewNop())

	h := NewBillingHandler(billingSvc, contactSvc)

	// Stands in for Auth(); the X-User header plays the verified subject.
	fakeAuth := func(c *gin.Context) {
		if user := c.GetHeader("X-User"); user != "" {
			c.Set(middleware.ContextUserID, user)
		}
		c.Next()
	}

	r := gin.New()
	r.GET("/organizations/:slug/billing", fakeAuth, h.GetBillingPage)
	r.POST("/organizations/:slug/billing/contact-sales", fakeAuth, h.ContactSales)
	r.GET("/billing/prices", h.GetPriceID)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, user, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestGetBillingPage(t *testing.T) {
	r := newRouter(t, &noopMailer{})

	w, env := do(t, r, http.MethodGet, "/organizations/acme/billing", "user_1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var page billing.BillingPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.True(t, page.IsOnFreeTrial)
	assert.Equal(t, 2, page.CurrentSeats)
	assert.Equal(t, "acme", page.OrganizationSlug)
}

func TestGetBillingPage_Errors(t *testing.T) {
	r := newRouter(t, &noopMailer{})

	tests := []struct {
		name   string
		path   string
		user   string
		status int
	}{
		{"unknown organization", "/organizations/nope/billing", "user_1", http.StatusNotFound},
		{"not a member", "/organizations/acme/billing", "user_9", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, tt.path, tt.user, "")
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestContactSales(t *testing.T) {
	mailer := &noopMailer{}
	r := newRouter(t, mailer)
	body := `{"first_name":"Ada","last_name":"Lovelace","company_name":"Engines","work_email":"ada@example.com","phone_number":"+1 555","message":"hello"}`

	w, env := do(t, r, http.MethodPost, "/organizations/acme/billing/contact-sales", "user_1", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp billing.ContactSalesResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Len(t, resp.Reference, 26)
	assert.Equal(t, "acme", resp.OrganizationSlug)
	assert.Equal(t, 1, mailer.sent)

	for i := 1; i < service.ContactSalesMaxAttempts; i++ {
		w, _ = do(t, r, http.MethodPost, "/organizations/acme/billing/contact-sales", "user_1", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, _ = do(t, r, http.MethodPost, "/organizations/acme/billing/contact-sales", "user_1", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestContactSales_InvalidBody(t *testing.T) {
	mailer := &noopMailer{}
	r := newRouter(t, mailer)

	w, env := do(t, r, http.MethodPost, "/organizations/acme/billing/contact-sales", "user_1", `{"first_name":"Ada","work_email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", env.Message)
	assert.Zero(t, mailer.sent)
}

func TestGetPriceID(t *testing.T) {
	r := newRouter(t, &noopMailer{})

	w, env := do(t, r, http.MethodGet, "/billing/prices?tier=mid&interval=annual", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp billing.PriceLookupResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, billing.PricesByTierAndInterval["mid_annual"].ID, resp.PriceID)
	assert.Equal(t, billing.TierMid, resp.Tier)
	assert.Equal(t, billing.IntervalAnnual, resp.Interval)
}

func TestGetPriceID_Invalid(t *testing.T) {
	r := newRouter(t, &noopMailer{})

	w, _ := do(t, r, http.MethodGet, "/billing/prices?tier=mid", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := do(t, r, http.MethodGet, "/billing/prices?tier=gold&interval=monthly", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "Invalid tier/interval combination")
}
