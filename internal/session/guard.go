package session

import (
	"slices"

	"github.com/angelmondragon/meaw-storefront/pkg/enums"
)

// Decision is the outcome of evaluating a Guard.
type Decision string

const (
	DecisionAllow         Decision = "allow"
	DecisionPending       Decision = "pending"
	DecisionRedirectLogin Decision = "redirect_login"
	DecisionRedirectHome  Decision = "redirect_home"
)

// RedirectPath returns where a denied caller should be sent, or "" when no redirect applies.
func (d Decision) RedirectPath() string {
	switch d {
	case DecisionRedirectLogin:
		return "/login"
	case DecisionRedirectHome:
		return "/"
	default:
		return ""
	}
}

// Guard protects a view. An empty Allowed list only requires authentication.
type Guard struct {
	Name    string
	Allowed []enums.UserRole
}

var (
	AccountGuard  = Guard{Name: "account", Allowed: []enums.UserRole{enums.UserRoleCustomer, enums.UserRoleAdmin}}
	OrdersGuard   = Guard{Name: "orders", Allowed: []enums.UserRole{enums.UserRoleCustomer, enums.UserRoleAdmin}}
	WishlistGuard = Guard{Name: "wishlist"}
	VendorGuard   = Guard{Name: "vendor", Allowed: []enums.UserRole{enums.UserRoleVendor, enums.UserRoleAdmin}}
	AdminGuard    = Guard{Name: "admin", Allowed: []enums.UserRole{enums.UserRoleAdmin}}
)

// Evaluate decides access for a session in the given state.
func (g Guard) Evaluate(state State) Decision {
	if state.IsLoading {
		return DecisionPending
	}
	if !state.IsAuthenticated || state.User == nil {
		return DecisionRedirectLogin
	}
	if len(g.Allowed) == 0 {
		return DecisionAllow
	}

	switch role := state.User.Role; role {
	case enums.UserRoleAdmin, enums.UserRoleVendor, enums.UserRoleCustomer, enums.UserRoleGuest:
		if slices.Contains(g.Allowed, role) {
			return DecisionAllow
		}
		return DecisionRedirectHome
	default:
		return DecisionRedirectHome
	}
}
