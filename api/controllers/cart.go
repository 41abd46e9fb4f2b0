package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/api/validators"
	"github.com/angelmondragon/meaw-storefront/internal/cart"
	"github.com/angelmondragon/meaw-storefront/internal/notifications"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/metrics"
)

const (
	discountApplied  = "applied"
	discountInvalid  = "invalid"
	discountConflict = "conflict"
	discountCanceled = "canceled"
)

type addCartItemRequest struct {
	ProductID   string  `json:"product_id" validate:"required"`
	VariantID   *string `json:"variant_id"`
	Name        string  `json:"name" validate:"required"`
	Image       string  `json:"image"`
	UnitPrice   int64   `json:"unit_price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	MaxQuantity int     `json:"max_quantity" validate:"gte=0"`
	VendorID    string  `json:"vendor_id"`
	VendorName  string  `json:"vendor_name"`
}

type updateCartItemRequest struct {
	// 0 removes the line; omitting the field is rejected.
	Quantity *int `json:"quantity" validate:"required"`
}

type applyDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

func GetCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Cart.State())
	}
}

// AddCartItem merges the item into the cart and drops an "added to cart" entry into the feed.
func AddCartItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cart.AddItemInput{
			ProductID:   strings.TrimSpace(req.ProductID),
			VariantID:   validators.SanitizeOptional(req.VariantID, 64),
			Name:        validators.SanitizeString(req.Name, 200),
			Image:       strings.TrimSpace(req.Image),
			UnitPrice:   req.UnitPrice,
			Quantity:    req.Quantity,
			MaxQuantity: req.MaxQuantity,
			VendorID:    strings.TrimSpace(req.VendorID),
			VendorName:  validators.SanitizeString(req.VendorName, 200),
		}
		state := ws.Cart.AddItem(input)

		var userID string
		if user := ws.Session.State().User; user != nil {
			userID = user.ID
		}
		quantity := max(req.Quantity, 1)
		if _, err := ws.Notifications.Add(notifications.AddedToCart(userID, input.ProductID, input.Name, quantity)); err != nil && logg != nil {
			logg.Warn(logg.WithFields(r.Context(), pkgerrors.Dump(err).Fields()), "notification.add_failed")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

func UpdateCartItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		lineID := strings.TrimSpace(chi.URLParam(r, "lineId"))
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id is required"))
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ws.Cart.UpdateQuantity(lineID, *req.Quantity))
	}
}

func RemoveCartItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		lineID := strings.TrimSpace(chi.URLParam(r, "lineId"))
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line id is required"))
			return
		}
		responses.WriteSuccess(w, ws.Cart.RemoveItem(lineID))
	}
}

func ClearCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Cart.Clear())
	}
}

// ApplyDiscount blocks for the simulated lookup; a client that disconnects cancels it.
func ApplyDiscount(m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		var req applyDiscountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := ws.Cart.ApplyDiscount(r.Context(), req.Code)
		m.IncDiscount(discountResult(err))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func RemoveDiscount(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Cart.RemoveDiscount())
	}
}

func discountResult(err error) string {
	switch {
	case err == nil:
		return discountApplied
	case pkgerrors.IsCode(err, pkgerrors.CodeDiscountInvalid):
		return discountInvalid
	case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		return discountConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return discountCanceled
	default:
		return metrics.ResultError
	}
}
