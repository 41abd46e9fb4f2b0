package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/api/validators"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

type languageRequest struct {
	Language string `json:"language" validate:"required,language"`
}

type languageResponse struct {
	Language enums.Language `json:"language"`
}

func GetLanguage(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, languageResponse{Language: ws.Preferences.Language()})
	}
}

func SetLanguage(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		var req languageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lang, err := ws.Preferences.SetLanguage(enums.Language(strings.TrimSpace(req.Language)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, languageResponse{Language: lang})
	}
}

func ToggleLanguage(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, languageResponse{Language: ws.Preferences.ToggleLanguage()})
	}
}
