// Package workspace is the per-client composition root. A workspace owns one
// set of engines, rehydrated from and persisted to the snapshot store.
package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/meaw-storefront/internal/cart"
	"github.com/angelmondragon/meaw-storefront/internal/notifications"
	"github.com/angelmondragon/meaw-storefront/internal/persistence"
	"github.com/angelmondragon/meaw-storefront/internal/preferences"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/internal/wishlist"
)

// Workspace groups the engines of one client.
type Workspace struct {
	ClientID      string
	CreatedAt     time.Time
	Cart          cart.Engine
	Session       session.Engine
	Wishlist      wishlist.Engine
	Preferences   preferences.Engine
	Notifications notifications.Feed

	adapter *persistence.Adapter
	// leases held by in-flight requests, guarded by Registry.mu
	refs int
}

// Degraded reports whether snapshot writes have been disabled for this workspace.
func (w *Workspace) Degraded() bool {
	return w.adapter != nil && w.adapter.Degraded()
}

// Flush writes every engine's current snapshot.
func (w *Workspace) Flush(ctx context.Context) error {
	if w.adapter == nil {
		return nil
	}
	return w.adapter.Flush(ctx)
}

func (w *Workspace) close() {
	if w.adapter != nil {
		w.adapter.Close()
	}
}

// open builds and rehydrates the engines for clientID. Preferences are
// attached first so the session's localized messages see the stored language.
func open(ctx context.Context, clientID string, p *Params) (*Workspace, error) {
	prefs := preferences.NewEngine()

	sess, err := session.NewEngine(session.EngineParams{
		Directory:    p.Directory,
		Language:     prefs,
		LoginLatency: p.LoginLatency,
		Now:          p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("session engine: %w", err)
	}

	cartEngine, err := cart.NewEngine(cart.EngineParams{
		Pricing:         p.Pricing,
		Catalog:         p.Catalog,
		DiscountLatency: p.DiscountLatency,
		Now:             p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("cart engine: %w", err)
	}

	ws := &Workspace{
		ClientID:      clientID,
		CreatedAt:     p.Now(),
		Cart:          cartEngine,
		Session:       sess,
		Wishlist:      wishlist.NewEngine(p.Now),
		Preferences:   prefs,
		Notifications: notifications.NewFeed(p.Now),
	}

	adapter, err := persistence.NewAdapter(persistence.Params{
		Store:        p.Store,
		ClientID:     clientID,
		Logger:       p.Logger,
		Metrics:      p.Metrics,
		WriteTimeout: p.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("persistence adapter: %w", err)
	}
	ws.adapter = adapter

	if err := persistence.Attach[preferences.Snapshot](ctx, adapter, persistence.LanguageKey, ws.Preferences); err != nil {
		return nil, err
	}
	if err := persistence.Attach[session.Snapshot](ctx, adapter, persistence.AuthKey, ws.Session); err != nil {
		return nil, err
	}
	if err := persistence.Attach[cart.Snapshot](ctx, adapter, persistence.CartKey, ws.Cart); err != nil {
		return nil, err
	}
	if err := persistence.Attach[wishlist.Snapshot](ctx, adapter, persistence.WishlistKey, ws.Wishlist); err != nil {
		return nil, err
	}
	return ws, nil
}
