package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/meaw-storefront/api/controllers"
	"github.com/angelmondragon/meaw-storefront/api/middleware"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/metrics"
)

// Workspaces is the slice of the workspace registry the router needs.
type Workspaces interface {
	middleware.WorkspaceProvider
	controllers.Pinger
	controllers.WorkspaceCounter
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	workspaces Workspaces,
	storefrontMetrics *metrics.StorefrontMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, workspaces, logg))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/clients", controllers.IssueClientToken(cfg.Token, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.ClientAuth(cfg.Token, workspaces, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(logg))
				r.Delete("/", controllers.ClearCart(logg))
				r.Post("/items", controllers.AddCartItem(logg))
				r.Patch("/items/{lineId}", controllers.UpdateCartItem(logg))
				r.Delete("/items/{lineId}", controllers.RemoveCartItem(logg))
				r.Post("/discount", controllers.ApplyDiscount(storefrontMetrics, logg))
				r.Delete("/discount", controllers.RemoveDiscount(logg))
			})

			r.Route("/session", func(r chi.Router) {
				r.Get("/", controllers.GetSession(logg))
				r.Post("/login", controllers.Login(storefrontMetrics, logg))
				r.Post("/register", controllers.Register(logg))
				r.Post("/logout", controllers.Logout(logg))
				r.Patch("/user", controllers.UpdateSessionUser(logg))
				r.Delete("/error", controllers.ClearSessionError(logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.GetWishlist(logg))
				r.Delete("/", controllers.ClearWishlist(logg))
				r.With(middleware.RequireGuard(session.WishlistGuard, logg)).Get("/view", controllers.WishlistView(logg))
				r.Put("/{productId}", controllers.AddToWishlist(logg))
				r.Delete("/{productId}", controllers.RemoveFromWishlist(logg))
				r.Post("/{productId}/toggle", controllers.ToggleWishlist(logg))
			})

			r.Route("/preferences/language", func(r chi.Router) {
				r.Get("/", controllers.GetLanguage(logg))
				r.Put("/", controllers.SetLanguage(logg))
				r.Post("/toggle", controllers.ToggleLanguage(logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(logg))
				r.Delete("/", controllers.ClearNotifications(logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(logg))
				r.Delete("/{notificationId}", controllers.DeleteNotification(logg))
			})

			r.With(middleware.RequireGuard(session.AccountGuard, logg)).Get("/account", controllers.Account(logg))
			r.With(middleware.RequireGuard(session.OrdersGuard, logg)).Get("/orders", controllers.Orders(logg))
			r.With(middleware.RequireGuard(session.VendorGuard, logg)).Get("/vendor/dashboard", controllers.VendorDashboard(logg))
			r.With(middleware.RequireGuard(session.AdminGuard, logg)).Get("/admin/dashboard", controllers.AdminDashboard(workspaces, logg))
		})
	})

	return r
}
