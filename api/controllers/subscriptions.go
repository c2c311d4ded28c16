package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milkoapp/milko-backend/api/middleware"
	"github.com/milkoapp/milko-backend/api/responses"
	"github.com/milkoapp/milko-backend/api/validators"
	subscriptionsvc "github.com/milkoapp/milko-backend/internal/subscriptions"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

type createSubscriptionRequest struct {
	ProductID      string `json:"product_id" validate:"required,uuid"`
	LitresPerDay   string `json:"litres_per_day" validate:"required"`
	DurationMonths int    `json:"duration_months" validate:"required,min=1,max=12"`
	DeliveryTime   string `json:"delivery_time" validate:"required"`
	StartDate      string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type pausedDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func actorFromRequest(r *http.Request) (subscriptionsvc.Actor, uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(raw)
	if err != nil {
		return subscriptionsvc.Actor{}, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return subscriptionsvc.OwnerActor(userID), userID, nil
}

// CreateSubscription starts a pending subscription and returns the payment
// order the client must complete.
func CreateSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		_, userID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		litres, err := decimal.NewFromString(strings.TrimSpace(body.LitresPerDay))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid litres per day"))
			return
		}
		startDate, err := time.Parse(time.DateOnly, body.StartDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid start date"))
			return
		}

		result, err := svc.Create(r.Context(), userID, subscriptionsvc.CreateSubscriptionInput{
			ProductID:      productID,
			LitresPerDay:   litres,
			DurationMonths: body.DurationMonths,
			DeliveryTime:   body.DeliveryTime,
			StartDate:      startDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toCreateSubscriptionResponse(result))
	}
}

// GetSubscription serves one subscription to its owner.
func GetSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		actor, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSubscriptionResponse(sub))
	}
}

// ListMySubscriptions serves the caller's subscriptions.
func ListMySubscriptions(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		actor, userID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListByUser(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSubscriptionResponses(items))
	}
}

type subscriptionTransition func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error

func transitionHandler(svc subscriptionsvc.Service, logg *logger.Logger, apply subscriptionTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		actor, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := apply(svc, r, actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSubscriptionResponse(sub))
	}
}

// PauseSubscription halts deliveries until resumed.
func PauseSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error {
		return svc.Pause(r.Context(), actor, id)
	})
}

// ResumeSubscription restarts a paused subscription.
func ResumeSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error {
		return svc.Resume(r.Context(), actor, id)
	})
}

// CancelSubscription terminates a subscription and its pending deliveries.
func CancelSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error {
		return svc.Cancel(r.Context(), actor, id)
	})
}

// AddPausedDate skips delivery on a single date.
func AddPausedDate(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		actor, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pausedDateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := time.Parse(time.DateOnly, body.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date"))
			return
		}

		if err := svc.AddPausedDate(r.Context(), actor, id, date); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pausedDateResponse{Date: body.Date})
	}
}

// RemovePausedDate restores delivery on a previously skipped date.
func RemovePausedDate(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		actor, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawDate := r.URL.Query().Get("date")
		date, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date"))
			return
		}

		if err := svc.RemovePausedDate(r.Context(), actor, id, date); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// ListPausedDates serves the skip calendar for a subscription.
func ListPausedDates(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		actor, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListPausedDates(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPausedDateResponses(items))
	}
}
