package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/api/validators"
	"github.com/angelmondragon/meaw-storefront/internal/workspace"
	pkgauth "github.com/angelmondragon/meaw-storefront/pkg/auth"
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

// WorkspaceProvider hands out a client's workspace pinned until release is called.
type WorkspaceProvider interface {
	Acquire(ctx context.Context, clientID string) (ws *workspace.Workspace, release func(), err error)
}

// ClientAuth validates the client bearer token and attaches that client's
// workspace, holding it for the rest of the request.
func ClientAuth(cfg config.TokenConfig, workspaces WorkspaceProvider, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing client token"))
				return
			}

			claims, err := pkgauth.ParseClientToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid client token"))
				return
			}

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithClientID(ctx, claims.ClientID)
			}

			ws, release, err := workspaces.Acquire(ctx, claims.ClientID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open workspace"))
				return
			}
			defer release()

			ctx = WithWorkspace(ctx, ws)
			if logg != nil {
				if user := ws.Session.State().User; user != nil {
					ctx = logg.WithUserID(ctx, user.ID)
					ctx = logg.WithActorRole(ctx, string(user.Role))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
