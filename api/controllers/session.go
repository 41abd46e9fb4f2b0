package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/api/validators"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/metrics"
)

const (
	loginOK         = "ok"
	loginFailed     = "failed"
	loginSuperseded = "superseded"
	loginCanceled   = "canceled"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     string  `json:"name" validate:"required,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Role     *string `json:"role" validate:"omitempty,role"`
}

type updateUserRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=120"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	Avatar        *string `json:"avatar" validate:"omitempty,url"`
	Role          *string `json:"role" validate:"omitempty,role"`
	EmailVerified *bool   `json:"email_verified"`
}

func GetSession(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Session.State())
	}
}

// Login waits out the simulated round trip. A failed attempt still updates the session's
// localized last_error, which the client reads back through GET /session.
func Login(m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := ws.Session.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
		m.IncLogin(loginResult(err))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil && state.User != nil {
			ctx = logg.WithUserID(ctx, state.User.ID)
			logg.Info(logg.WithActorRole(ctx, string(state.User.Role)), "session.login")
		}
		responses.WriteSuccess(w, state)
	}
}

func Register(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := session.RegisterInput{
			Email:    strings.TrimSpace(req.Email),
			Password: req.Password,
			Name:     validators.SanitizeString(req.Name, 120),
			Phone:    validators.SanitizeOptional(req.Phone, 32),
		}
		if req.Role != nil {
			role := enums.UserRole(strings.TrimSpace(*req.Role))
			input.Role = &role
		}

		state, err := ws.Session.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

func Logout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Session.Logout())
	}
}

// UpdateSessionUser patches the signed-in profile. Anonymous sessions are returned unchanged.
func UpdateSessionUser(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		var req updateUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := session.UserPatch{
			Name:          validators.SanitizeOptional(req.Name, 120),
			Email:         validators.SanitizeOptional(req.Email, 254),
			Phone:         validators.SanitizeOptional(req.Phone, 32),
			Avatar:        validators.SanitizeOptional(req.Avatar, 2048),
			EmailVerified: req.EmailVerified,
		}
		if req.Role != nil {
			role := enums.UserRole(strings.TrimSpace(*req.Role))
			patch.Role = &role
		}

		state, err := ws.Session.UpdateUser(patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func ClearSessionError(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Session.ClearError())
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return loginOK
	case pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized):
		return loginFailed
	case pkgerrors.IsCode(err, pkgerrors.CodeSuperseded):
		return loginSuperseded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return loginCanceled
	default:
		return metrics.ResultError
	}
}
