// internal/service/stripesync/synchronizer.go
package stripesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orgbilling-service/internal/domain/billing"
	"orgbilling-service/internal/domain/organization"
	xerrors "orgbilling-service/internal/pkg/errors"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// Outcome is how a single event ended. The webhook transport acknowledges every
// outcome with 200 so Stripe does not retry; Failed outcomes are for operators.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

const (
	EventCheckoutSessionCompleted     stripe.EventType = "checkout.session.completed"
	EventCustomerDeleted              stripe.EventType = "customer.deleted"
	EventSubscriptionCreated          stripe.EventType = "customer.subscription.created"
	EventSubscriptionUpdated          stripe.EventType = "customer.subscription.updated"
	EventSubscriptionDeleted          stripe.EventType = "customer.subscription.deleted"
	EventPriceCreated                 stripe.EventType = "price.created"
	EventPriceUpdated                 stripe.EventType = "price.updated"
	EventPriceDeleted                 stripe.EventType = "price.deleted"
	EventProductCreated               stripe.EventType = "product.created"
	EventProductUpdated               stripe.EventType = "product.updated"
	EventProductDeleted               stripe.EventType = "product.deleted"
	EventSubscriptionScheduleCreated  stripe.EventType = "subscription_schedule.created"
	EventSubscriptionScheduleUpdated  stripe.EventType = "subscription_schedule.updated"
	EventSubscriptionScheduleExpiring stripe.EventType = "subscription_schedule.expiring"
	EventSubscriptionScheduleCanceled stripe.EventType = "subscription_schedule.canceled"
	EventSubscriptionScheduleReleased stripe.EventType = "subscription_schedule.released"
)

// Metadata keys set on checkout sessions, subscriptions and customers.
const (
	MetadataOrganizationID = "organizationId"
	MetadataPurchasedByID  = "purchasedById"
)

const productionPayloadNotice = "event not logged in production mode - look it up in the Stripe Dashboard"

// errSkipped marks events that are valid but carry nothing to store.
var errSkipped = errors.New("nothing to synchronize")

// CustomerUpdater pushes the organization name and id back onto the Stripe customer.
type CustomerUpdater interface {
	UpdateCustomer(ctx context.Context, customerID, name, organizationID string) error
}

type Repositories struct {
	Organizations organization.Repository
	Subscriptions billing.SubscriptionRepository
	Prices        billing.PriceRepository
	Products      billing.ProductRepository
	Schedules     billing.SubscriptionScheduleRepository
}

type handlerFunc func(ctx context.Context, event *stripe.Event) error

type Synchronizer struct {
	repos        Repositories
	customers    CustomerUpdater
	logger       *zap.Logger
	isProduction bool
	now          func() time.Time
	handlers     map[stripe.EventType]handlerFunc
}

func NewSynchronizer(repos Repositories, customers CustomerUpdater, logger *zap.Logger, isProduction bool) *Synchronizer {
	s := &Synchronizer{
		repos:        repos,
		customers:    customers,
		logger:       logger,
		isProduction: isProduction,
		now:          time.Now,
	}

	s.handlers = map[stripe.EventType]handlerFunc{
		EventCheckoutSessionCompleted:     s.handleCheckoutSessionCompleted,
		EventCustomerDeleted:              s.handleCustomerDeleted,
		EventSubscriptionCreated:          s.handleSubscriptionCreated,
		EventSubscriptionUpdated:          s.handleSubscriptionUpdated,
		EventSubscriptionDeleted:          s.handleSubscriptionUpdated,
		EventPriceCreated:                 s.handlePriceUpserted,
		EventPriceUpdated:                 s.handlePriceUpserted,
		EventPriceDeleted:                 s.handlePriceDeleted,
		EventProductCreated:               s.handleProductUpserted,
		EventProductUpdated:               s.handleProductUpserted,
		EventProductDeleted:               s.handleProductDeleted,
		EventSubscriptionScheduleCreated:  s.handleScheduleUpserted,
		EventSubscriptionScheduleUpdated:  s.handleScheduleUpserted,
		EventSubscriptionScheduleExpiring: s.handleScheduleUpserted,
		EventSubscriptionScheduleCanceled: s.handleScheduleRemoved,
		EventSubscriptionScheduleReleased: s.handleScheduleRemoved,
	}

	return s
}

// WithClock replaces the clock used to end trials on checkout.
func (s *Synchronizer) WithClock(now func() time.Time) *Synchronizer {
	s.now = now
	return s
}

// Apply runs the handler for event and never returns an error: the result is
// logged and reported as an Outcome.
func (s *Synchronizer) Apply(ctx context.Context, event *stripe.Event) Outcome {
	handle, ok := s.handlers[event.Type]
	if !ok {
		s.logger.Info("unhandled stripe event",
			append(s.eventFields(event), s.payloadField(event))...)
		return OutcomeIgnored
	}
	return s.acknowledge(ctx, event, handle)
}

// acknowledge is the single recovery policy shared by every handler.
func (s *Synchronizer) acknowledge(ctx context.Context, event *stripe.Event, handle handlerFunc) (outcome Outcome) {
	fields := s.eventFields(event)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while handling stripe event",
				append(fields, zap.Any("panic", r), zap.Stack("stack"), s.payloadField(event))...)
			outcome = OutcomeFailed
		}
	}()

	err := handle(ctx, event)
	switch {
	case err == nil:
		s.logger.Info("stripe event processed", fields...)
		return OutcomeProcessed
	case errors.Is(err, errSkipped), errors.Is(err, xerrors.ErrMissingMetadata):
		s.logger.Warn("stripe event skipped", append(fields, zap.Error(err))...)
		return OutcomeSkipped
	default:
		s.logger.Error("failed to handle stripe event",
			append(fields, zap.Error(err), s.payloadField(event))...)
		return OutcomeFailed
	}
}

func (s *Synchronizer) eventFields(event *stripe.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	}
}

func (s *Synchronizer) payloadField(event *stripe.Event) zap.Field {
	if s.isProduction {
		return zap.String("payload", productionPayloadNotice)
	}
	if event.Data == nil {
		return zap.Skip()
	}
	return zap.ByteString("payload", event.Data.Raw)
}

func decodeObject[T any](event *stripe.Event) (*T, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("event %s has no data object: %w", event.ID, xerrors.ErrInvalidInput)
	}
	var obj T
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode %s object: %w", event.Type, err)
	}
	return &obj, nil
}
