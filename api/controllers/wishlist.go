package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

type toggleWishlistResponse struct {
	Saved    bool `json:"saved"`
	Wishlist any  `json:"wishlist"`
}

func productIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		return "", false
	}
	return productID, true
}

func GetWishlist(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Wishlist.State())
	}
}

// AddToWishlist is idempotent: saving a product twice keeps a single entry.
func AddToWishlist(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Wishlist.Add(productID))
	}
}

func RemoveFromWishlist(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Wishlist.Remove(productID))
	}
}

func ToggleWishlist(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		productID, ok := productIDParam(w, r, logg)
		if !ok {
			return
		}
		state, saved := ws.Wishlist.Toggle(productID)
		responses.WriteSuccess(w, toggleWishlistResponse{Saved: saved, Wishlist: state})
	}
}

func ClearWishlist(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Wishlist.Clear())
	}
}
