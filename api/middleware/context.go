package middleware

import (
	"context"

	"github.com/angelmondragon/meaw-storefront/internal/workspace"
)

type contextKey string

const (
	ctxClientID  contextKey = "client_id"
	ctxWorkspace contextKey = "workspace"
)

func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClientID).(string); ok {
		return v
	}
	return ""
}

// WorkspaceFromContext returns the workspace ClientAuth resolved for the request.
func WorkspaceFromContext(ctx context.Context) *workspace.Workspace {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxWorkspace).(*workspace.Workspace); ok {
		return v
	}
	return nil
}

// WithWorkspace injects the client workspace into the context for downstream handlers.
func WithWorkspace(ctx context.Context, ws *workspace.Workspace) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClientID, ws.ClientID)
	return context.WithValue(ctx, ctxWorkspace, ws)
}
