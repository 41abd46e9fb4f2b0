package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	pkgauth "github.com/angelmondragon/meaw-storefront/pkg/auth"
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

type clientTokenResponse struct {
	ClientID  string    `json:"client_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueClientToken hands a new browser its client id. The workspace itself is opened lazily
// on the first authenticated request.
func IssueClientToken(cfg config.TokenConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		clientID := pkgauth.NewClientID()

		token, err := pkgauth.MintClientToken(cfg, now, clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint client token"))
			return
		}

		if logg != nil {
			logg.Info(logg.WithClientID(r.Context(), clientID), "client.issued")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, clientTokenResponse{
			ClientID:  clientID,
			Token:     token,
			ExpiresAt: now.Add(cfg.TTL),
		})
	}
}
