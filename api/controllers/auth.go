package controllers

import (
	"net/http"

	"github.com/milkoapp/milko-backend/api/responses"
	"github.com/milkoapp/milko-backend/api/validators"
	authsvc "github.com/milkoapp/milko-backend/internal/auth"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

type registerRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password" validate:"required,min=8"`
	Address  *string `json:"address,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// AuthRegister creates a customer account and logs it in.
func AuthRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), authsvc.RegisterInput{
			Name:     body.Name,
			Email:    body.Email,
			Phone:    body.Phone,
			Password: body.Password,
			Address:  body.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, authResponse{
			User:  toUserResponse(result.User),
			Token: result.Token,
		})
	}
}

// AuthLogin exchanges credentials for an access token.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), authsvc.LoginInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, authResponse{
			User:  toUserResponse(result.User),
			Token: result.Token,
		})
	}
}
