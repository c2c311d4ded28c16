// Package webhooks exposes the HTTP surface for payment-gateway callbacks.
package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/milkoapp/milko-backend/api/responses"
	razorpaywebhook "github.com/milkoapp/milko-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

const eventIDHeader = "X-Razorpay-Event-Id"

type razorpayWebhookService interface {
	HandleEvent(ctx context.Context, eventID string, event *razorpaywebhook.Event) razorpaywebhook.Outcome
}

type signatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

// RazorpayWebhook authenticates and applies gateway callbacks. Verified
// events always get a 200 so the gateway does not retry events we have
// already recorded as failed; unverifiable requests are rejected.
func RazorpayWebhook(svc razorpayWebhookService, verifier signatureVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get("X-Razorpay-Signature"))
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature missing"))
			return
		}
		if !verifier.VerifyWebhookSignature(payload, signature) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		eventID := strings.TrimSpace(r.Header.Get(eventIDHeader))

		// A verified but undecodable body still gets acknowledged so the
		// gateway does not retry a payload that will fail the same way.
		var event razorpaywebhook.Event
		var outcome razorpaywebhook.Outcome
		if err := json.Unmarshal(payload, &event); err != nil {
			logg.Error(ctx, "failed to decode webhook event", err)
			outcome = razorpaywebhook.Failed("undecodable event payload")
		} else {
			outcome = svc.HandleEvent(ctx, eventID, &event)
		}

		responses.WriteSuccess(w, map[string]string{
			"status":      "ok",
			"disposition": string(outcome.Disposition),
		})
	}
}
