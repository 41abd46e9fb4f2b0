package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/meaw-storefront/internal/cart"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/metrics"
	"github.com/angelmondragon/meaw-storefront/pkg/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"
)

const defaultCapacity = 1024

// Authenticator resolves credentials against the identity directory.
type Authenticator interface {
	Authenticate(email, password string) (session.User, bool, error)
}

// Params configures a Registry. Everything except Store and Directory has a default.
type Params struct {
	Store           storage.Store
	Directory       Authenticator
	Pricing         *cart.PricingPolicy
	Catalog         cart.DiscountCatalog
	LoginLatency    time.Duration
	DiscountLatency time.Duration
	WriteTimeout    time.Duration
	Capacity        int
	Logger          *logger.Logger
	Metrics         *metrics.StorefrontMetrics
	Now             func() time.Time
}

// Registry keeps the most recently used workspaces in memory. An evicted
// workspace is rebuilt from its snapshots on the next request, unless a
// request still holds it: then it drains until the last lease is released
// and a Get in the meantime hands back that same workspace.
type Registry struct {
	params Params
	cache  *lru.Cache[string, *Workspace]

	// serializes cache misses so one client never gets two workspaces
	openMu sync.Mutex

	// guards Workspace.refs and draining
	mu       sync.Mutex
	draining map[string]*Workspace
}

func NewRegistry(p Params) (*Registry, error) {
	if p.Store == nil {
		return nil, errors.New("snapshot store is required")
	}
	if p.Directory == nil {
		return nil, errors.New("identity directory is required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Capacity <= 0 {
		p.Capacity = defaultCapacity
	}

	r := &Registry{params: p, draining: make(map[string]*Workspace)}
	cache, err := lru.NewWithEvict[string, *Workspace](p.Capacity, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("workspace cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// onEvict runs outside the cache lock, always with openMu held.
func (r *Registry) onEvict(clientID string, ws *Workspace) {
	r.mu.Lock()
	pinned := ws.refs > 0
	if pinned {
		r.draining[clientID] = ws
	}
	r.mu.Unlock()
	if !pinned {
		ws.close()
	}

	r.params.Metrics.IncEviction()
	r.params.Metrics.SetActiveWorkspaces(r.cache.Len())
	ctx := r.params.Logger.WithFields(context.Background(), map[string]any{"client_id": clientID, "pinned": pinned})
	r.params.Logger.Debug(ctx, "workspace evicted")
}

// Acquire returns the workspace for clientID and pins it until release is
// called. release is safe to call more than once.
func (r *Registry) Acquire(ctx context.Context, clientID string) (*Workspace, func(), error) {
	ws, err := r.get(ctx, clientID, true)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return ws, func() { once.Do(func() { r.release(ws) }) }, nil
}

// Get returns the workspace for clientID, opening and rehydrating it on first
// use. The workspace is not pinned; see Acquire.
func (r *Registry) Get(ctx context.Context, clientID string) (*Workspace, error) {
	return r.get(ctx, clientID, false)
}

func (r *Registry) get(ctx context.Context, clientID string, pin bool) (*Workspace, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("client id is required")
	}
	if ws, ok := r.cached(clientID, pin); ok {
		return ws, nil
	}

	r.openMu.Lock()
	defer r.openMu.Unlock()
	if ws, ok := r.cached(clientID, pin); ok {
		return ws, nil
	}

	ctx = r.params.Logger.WithClientID(ctx, clientID)
	if ws, ok := r.reclaim(clientID, pin); ok {
		r.cache.Add(clientID, ws)
		r.params.Metrics.SetActiveWorkspaces(r.cache.Len())
		r.params.Logger.Debug(ctx, "draining workspace reclaimed")
		return ws, nil
	}

	ws, err := open(ctx, clientID, &r.params)
	if err != nil {
		return nil, err
	}
	if pin {
		r.mu.Lock()
		ws.refs++
		r.mu.Unlock()
	}
	r.cache.Add(clientID, ws)
	r.params.Metrics.SetActiveWorkspaces(r.cache.Len())

	if ws.Degraded() {
		r.params.Logger.Warn(ctx, "workspace opened without persistence")
	} else {
		r.params.Logger.Debug(ctx, "workspace opened")
	}
	return ws, nil
}

// cached looks clientID up and pins the hit under mu, so onEvict sees the lease.
func (r *Registry) cached(clientID string, pin bool) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.cache.Get(clientID)
	if ok && pin {
		ws.refs++
	}
	return ws, ok
}

func (r *Registry) reclaim(clientID string, pin bool) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.draining[clientID]
	if !ok {
		return nil, false
	}
	delete(r.draining, clientID)
	if pin {
		ws.refs++
	}
	return ws, true
}

func (r *Registry) release(ws *Workspace) {
	r.mu.Lock()
	ws.refs--
	drop := ws.refs == 0 && r.draining[ws.ClientID] == ws
	if drop {
		delete(r.draining, ws.ClientID)
	}
	r.mu.Unlock()

	if drop {
		ws.close()
		r.params.Logger.Debug(r.params.Logger.WithClientID(context.Background(), ws.ClientID), "drained workspace released")
	}
}

// Peek returns a cached workspace without opening one or touching recency.
func (r *Registry) Peek(clientID string) (*Workspace, bool) {
	return r.cache.Peek(clientID)
}

// Len reports how many workspaces are in memory.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Ping checks the snapshot store backing every workspace.
func (r *Registry) Ping(ctx context.Context) error {
	return r.params.Store.Ping(ctx)
}

// Draining reports how many evicted workspaces are still held by a request.
func (r *Registry) Draining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.draining)
}

// Close flushes every cached or draining workspace, detaches persistence and
// closes the store.
func (r *Registry) Close(ctx context.Context) error {
	r.openMu.Lock()
	defer r.openMu.Unlock()

	workspaces := make(map[string]*Workspace)
	for _, clientID := range r.cache.Keys() {
		if ws, ok := r.cache.Peek(clientID); ok {
			workspaces[clientID] = ws
		}
	}
	r.mu.Lock()
	for clientID, ws := range r.draining {
		workspaces[clientID] = ws
	}
	r.mu.Unlock()

	var err error
	for clientID, ws := range workspaces {
		if !ws.Degraded() {
			if flushErr := ws.Flush(ctx); flushErr != nil {
				err = multierr.Append(err, fmt.Errorf("flush %s: %w", clientID, flushErr))
			}
		}
		ws.close()
	}
	r.cache.Purge()

	r.mu.Lock()
	r.draining = make(map[string]*Workspace)
	r.mu.Unlock()
	r.params.Metrics.SetActiveWorkspaces(0)
	return multierr.Append(err, r.params.Store.Close())
}
