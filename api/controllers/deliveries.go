package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/milkoapp/milko-backend/api/responses"
	"github.com/milkoapp/milko-backend/api/validators"
	deliverysvc "github.com/milkoapp/milko-backend/internal/deliveries"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

type updateDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending delivered skipped cancelled"`
}

// AdminDaySheet serves the delivery run for one calendar date. The date
// defaults to today when the query parameter is absent.
func AdminDaySheet(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		date := time.Now().UTC()
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			parsed, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date"))
				return
			}
			date = parsed
		}

		rows, err := svc.DaySheet(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDeliveryRowResponses(rows))
	}
}

// AdminUpdateDeliveryStatus settles one scheduled delivery.
func AdminUpdateDeliveryStatus(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		deliveryID, err := pathUUID(r, "deliveryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDeliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateStatus(r.Context(), deliveryID, enums.DeliveryStatus(body.Status)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": body.Status})
	}
}
