// Package razorpaywebhook reconciles Razorpay webhook events against local
// subscription state.
package razorpaywebhook

import (
	"context"
	"fmt"
	"time"

	"github.com/milkoapp/milko-backend/internal/subscriptions"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
	"github.com/milkoapp/milko-backend/pkg/metrics"
	"github.com/milkoapp/milko-backend/pkg/redis"
)

const idempotencyScope = "razorpay"

type subscriptionReconciler interface {
	ActivateByOrderRef(ctx context.Context, orderRef string) (*subscriptions.ActivationResult, error)
	ForceCancelByOrderRef(ctx context.Context, orderRef string) error
}

// ServiceParams groups dependencies for the webhook service.
type ServiceParams struct {
	Subscriptions  subscriptionReconciler
	Idempotency    redis.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        *metrics.WebhookMetrics
	Logger         *logger.Logger
}

// Service applies gateway events to local state.
type Service struct {
	subs    subscriptionReconciler
	idem    redis.IdempotencyStore
	idemTTL time.Duration
	metrics *metrics.WebhookMetrics
	logger  *logger.Logger
}

// NewService builds the webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.IdempotencyTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{
		subs:    params.Subscriptions,
		idem:    params.Idempotency,
		idemTTL: ttl,
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

// HandleEvent reconciles one webhook event. It never returns an error: the
// gateway retries on non-2xx responses, and a permanently broken event
// would retry forever. Failures surface through the Outcome, logs, and
// metrics instead.
func (s *Service) HandleEvent(ctx context.Context, eventID string, event *Event) Outcome {
	if event == nil {
		return s.finish(ctx, eventID, "", Failed("empty event payload"))
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"event":    event.Event,
		"event_id": eventID,
	})

	fresh, err := s.claimEvent(ctx, eventID, event)
	if err != nil {
		// Redis being down must not drop payment events; process anyway.
		s.logger.Warn(ctx, "webhook idempotency check failed, processing without dedupe")
	} else if !fresh {
		return s.finish(ctx, eventID, event.Event, Ignored("duplicate event"))
	}

	outcome := s.apply(ctx, event)
	if outcome.Disposition == DispositionFailed {
		// Release the claim so a gateway retry can reprocess the event.
		s.releaseEvent(ctx, eventID, event)
	}
	return s.finish(ctx, eventID, event.Event, outcome)
}

func (s *Service) apply(ctx context.Context, event *Event) Outcome {
	switch event.Event {
	case "payment.captured":
		return s.applyPaymentCaptured(ctx, event)
	case "payment.failed":
		return s.applyPaymentFailed(ctx, event)
	case "subscription.cancelled":
		return s.applyCancellation(ctx, event)
	default:
		return Ignored("event not handled")
	}
}

func (s *Service) applyPaymentCaptured(ctx context.Context, event *Event) Outcome {
	orderRef := event.OrderRef()
	if orderRef == "" {
		return Failed("payment.captured without order reference")
	}

	result, err := s.subs.ActivateByOrderRef(ctx, orderRef)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			switch appErr.Code() {
			case pkgerrors.CodeNotFound:
				// Order from another system sharing the gateway account.
				return Ignored("no subscription for order reference")
			case pkgerrors.CodeStateConflict:
				return Ignored(appErr.Message())
			}
		}
		s.logger.Error(ctx, "activate subscription from webhook", err)
		return Failed("activation failed")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"subscription_id": result.Subscription.ID.String(),
		"new_deliveries":  len(result.NewDeliveries),
	})
	s.logger.Info(ctx, "subscription activated by payment capture")
	return Applied()
}

func (s *Service) applyPaymentFailed(ctx context.Context, event *Event) Outcome {
	fields := map[string]any{"order_ref": event.OrderRef()}
	if event.Payload.Payment != nil {
		fields["error_code"] = event.Payload.Payment.Entity.ErrorCode
		fields["error_description"] = event.Payload.Payment.Entity.ErrorDescription
	}
	s.logger.Warn(s.logger.WithFields(ctx, fields), "payment failed at gateway")
	return Ignored("payment failure recorded")
}

func (s *Service) applyCancellation(ctx context.Context, event *Event) Outcome {
	orderRef := event.OrderRef()
	if orderRef == "" {
		return Failed("subscription.cancelled without order reference")
	}

	if err := s.subs.ForceCancelByOrderRef(ctx, orderRef); err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
			return Ignored("no subscription for order reference")
		}
		s.logger.Error(ctx, "cancel subscription from webhook", err)
		return Failed("cancellation failed")
	}
	return Applied()
}

// claimEvent marks the event as seen. Returns false when another delivery
// already claimed it.
func (s *Service) claimEvent(ctx context.Context, eventID string, event *Event) (bool, error) {
	return s.idem.SetNX(ctx, s.eventKey(eventID, event), "1", s.idemTTL)
}

func (s *Service) releaseEvent(ctx context.Context, eventID string, event *Event) {
	if err := s.idem.Del(ctx, s.eventKey(eventID, event)); err != nil {
		s.logger.Warn(ctx, "release webhook idempotency key failed")
	}
}

func (s *Service) eventKey(eventID string, event *Event) string {
	id := eventID
	if id == "" && event != nil {
		// Older gateway configurations omit the event id header.
		paymentID := ""
		if event.Payload.Payment != nil {
			paymentID = event.Payload.Payment.Entity.ID
		}
		id = fmt.Sprintf("%s:%s:%s", event.Event, event.OrderRef(), paymentID)
	}
	return s.idem.IdempotencyKey(idempotencyScope, id)
}

func (s *Service) finish(ctx context.Context, eventID, eventName string, outcome Outcome) Outcome {
	s.metrics.IncEvent(eventName, string(outcome.Disposition))
	ctx = s.logger.WithFields(ctx, map[string]any{
		"disposition": string(outcome.Disposition),
		"detail":      outcome.Detail,
	})
	s.logger.Info(ctx, "webhook event processed")
	return outcome
}
