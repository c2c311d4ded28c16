package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/milkoapp/milko-backend/api/responses"
	"github.com/milkoapp/milko-backend/api/validators"
	subscriptionsvc "github.com/milkoapp/milko-backend/internal/subscriptions"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
	"github.com/milkoapp/milko-backend/pkg/pagination"
)

type subscriptionPageResponse struct {
	Items      []subscriptionResponse `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// AdminListSubscriptions pages through every subscription, newest first.
func AdminListSubscriptions(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: limit}
		if token := strings.TrimSpace(r.URL.Query().Get("cursor")); token != "" {
			cursor, err := pagination.ParseCursor(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.Cursor = cursor
		}

		page, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, subscriptionPageResponse{
			Items:      toSubscriptionResponses(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

func adminTransitionHandler(svc subscriptionsvc.Service, logg *logger.Logger, apply func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		id, err := pathUUID(r, "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := subscriptionsvc.PrivilegedActor()
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

// AdminPauseSubscription pauses any subscription.
func AdminPauseSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransitionHandler(svc, logg, func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error {
		return svc.Pause(r.Context(), actor, id)
	})
}

// AdminResumeSubscription resumes any paused subscription.
func AdminResumeSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransitionHandler(svc, logg, func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error {
		return svc.Resume(r.Context(), actor, id)
	})
}

// AdminCancelSubscription cancels any subscription.
func AdminCancelSubscription(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransitionHandler(svc, logg, func(svc subscriptionsvc.Service, r *http.Request, actor subscriptionsvc.Actor, id uuid.UUID) error {
		return svc.Cancel(r.Context(), actor, id)
	})
}
