package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

const envHeader = "X-Meaw-Env"

// Pinger reports whether the snapshot store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, store Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "storage": cfg.Storage.NormalizedDriver()})
	}
}
