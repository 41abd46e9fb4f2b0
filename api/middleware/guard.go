package middleware

import (
	"net/http"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

// RequireGuard lets the request through only when the workspace session passes guard.
// Must run after ClientAuth.
func RequireGuard(guard session.Guard, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ws := WorkspaceFromContext(ctx)
			if ws == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "client workspace missing"))
				return
			}

			decision := ws.Session.Authorize(guard)
			switch decision {
			case session.DecisionAllow:
				next.ServeHTTP(w, r)
			case session.DecisionPending:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "sign-in in progress").
					WithDetails(map[string]any{"guard": guard.Name}))
			case session.DecisionRedirectLogin:
				responses.WriteDenied(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"), decision.RedirectPath())
			default:
				responses.WriteDenied(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role not allowed"), decision.RedirectPath())
			}
		})
	}
}
