package controllers

import (
	"net/http"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/internal/cart"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

// WorkspaceCounter reports how many client workspaces are resident.
type WorkspaceCounter interface {
	Len() int
}

type accountView struct {
	User          *session.User  `json:"user"`
	Language      enums.Language `json:"language"`
	WishlistCount int            `json:"wishlist_count"`
	CartItemCount int            `json:"cart_item_count"`
	UnreadCount   int            `json:"unread_count"`
}

type ordersView struct {
	Items []any      `json:"items"`
	Cart  cart.State `json:"cart"`
}

type vendorDashboardView struct {
	User        *session.User `json:"user"`
	CartVendors []string      `json:"cart_vendors"`
	UnreadCount int           `json:"unread_count"`
}

type adminDashboardView struct {
	User             *session.User `json:"user"`
	ActiveWorkspaces int           `json:"active_workspaces"`
}

// Account is the landing view of a signed-in customer or admin. Guarded by session.AccountGuard.
func Account(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, accountView{
			User:          ws.Session.State().User,
			Language:      ws.Preferences.Language(),
			WishlistCount: ws.Wishlist.State().Count,
			CartItemCount: ws.Cart.State().Totals.ItemCount,
			UnreadCount:   ws.Notifications.UnreadCount(),
		})
	}
}

// Orders has no order backend behind it; it lists nothing alongside the pending cart.
func Orders(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ordersView{Items: []any{}, Cart: ws.Cart.State()})
	}
}

// WishlistView is the guarded wishlist page; the wishlist routes themselves stay open.
func WishlistView(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, ws.Wishlist.State())
	}
}

func VendorDashboard(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		vendors := []string{}
		seen := map[string]struct{}{}
		for _, line := range ws.Cart.State().Items {
			if line.VendorID == "" {
				continue
			}
			if _, dup := seen[line.VendorID]; dup {
				continue
			}
			seen[line.VendorID] = struct{}{}
			vendors = append(vendors, line.VendorID)
		}

		responses.WriteSuccess(w, vendorDashboardView{
			User:        ws.Session.State().User,
			CartVendors: vendors,
			UnreadCount: ws.Notifications.UnreadCount(),
		})
	}
}

func AdminDashboard(workspaces WorkspaceCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		active := 0
		if workspaces != nil {
			active = workspaces.Len()
		}
		responses.WriteSuccess(w, adminDashboardView{User: ws.Session.State().User, ActiveWorkspaces: active})
	}
}
