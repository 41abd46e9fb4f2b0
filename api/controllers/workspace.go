package controllers

import (
	"net/http"

	"github.com/angelmondragon/meaw-storefront/api/middleware"
	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/internal/workspace"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

func requireWorkspace(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*workspace.Workspace, bool) {
	ws := middleware.WorkspaceFromContext(r.Context())
	if ws == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "client workspace missing"))
		return nil, false
	}
	return ws, true
}
