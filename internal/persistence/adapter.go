// Package persistence binds engine change signals to a snapshot store.
//
// Each attached engine is rehydrated once from "<clientId>:<name>" and then
// written on every change it emits. Write failures are logged and counted,
// never surfaced to engine callers; the first one flips the adapter into a
// degraded mode where it stops writing for the rest of the workspace's life.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/metrics"
	"github.com/angelmondragon/meaw-storefront/pkg/storage"
	"go.uber.org/multierr"
)

// Store names, kept identical to the keys browsers used before.
const (
	CartKey     = "cart-storage"
	AuthKey     = "auth-storage"
	WishlistKey = "wishlist-storage"
	LanguageKey = "language-storage"
)

const defaultWriteTimeout = 5 * time.Second

// Bindable is what an engine exposes to be persisted.
type Bindable[T any] interface {
	Snapshot() T
	Restore(snapshot T)
	Subscribe(fn func(T)) (cancel func())
}

// Params configures an Adapter for one client workspace.
type Params struct {
	Store        storage.Store
	ClientID     string
	Logger       *logger.Logger
	Metrics      *metrics.StorefrontMetrics
	WriteTimeout time.Duration
}

// Adapter persists the engines of a single workspace.
type Adapter struct {
	store    storage.Store
	clientID string
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	timeout  time.Duration

	mu       sync.Mutex
	degraded bool
	last     map[string][]byte
	bindings []binding
}

type binding struct {
	name   string
	flush  func(ctx context.Context) error
	cancel func()
}

func NewAdapter(p Params) (*Adapter, error) {
	if p.Store == nil {
		return nil, errors.New("store is required")
	}
	if strings.TrimSpace(p.ClientID) == "" {
		return nil, errors.New("client id is required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.WriteTimeout <= 0 {
		p.WriteTimeout = defaultWriteTimeout
	}
	return &Adapter{
		store:    p.Store,
		clientID: p.ClientID,
		logg:     p.Logger,
		metrics:  p.Metrics,
		timeout:  p.WriteTimeout,
		last:     map[string][]byte{},
	}, nil
}

// Key returns the store key for name in this workspace.
func (a *Adapter) Key(name string) string {
	return storage.Key(a.clientID, name)
}

// Degraded reports whether a write has failed and writing stopped.
func (a *Adapter) Degraded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.degraded
}

// Attach rehydrates engine from the store and subscribes to its changes.
// A missing or unreadable snapshot leaves the engine at its initial state.
func Attach[T any](ctx context.Context, a *Adapter, name string, engine Bindable[T]) error {
	if a == nil {
		return errors.New("adapter is required")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("store name is required")
	}

	rehydrate(ctx, a, name, engine)

	cancel := engine.Subscribe(func(snapshot T) {
		a.metrics.IncMutation(name)
		a.write(name, snapshot)
	})

	a.mu.Lock()
	a.bindings = append(a.bindings, binding{
		name: name,
		flush: func(ctx context.Context) error {
			return a.writeContext(ctx, name, engine.Snapshot(), true)
		},
		cancel: cancel,
	})
	a.mu.Unlock()
	return nil
}

func rehydrate[T any](ctx context.Context, a *Adapter, name string, engine Bindable[T]) {
	ctx = a.logg.WithFields(ctx, map[string]any{"client_id": a.clientID, "store": name})

	raw, err := a.store.Get(ctx, a.Key(name))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.metrics.IncRehydration(name, metrics.ResultEmpty)
		return
	case err != nil:
		// Writing defaults over a snapshot we could not read would destroy it.
		a.markDegraded()
		a.metrics.IncRehydration(name, metrics.ResultFallback)
		a.logg.Error(a.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "snapshot read failed; persistence disabled for workspace", err)
		return
	}

	var snapshot T
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		a.metrics.IncRehydration(name, metrics.ResultFallback)
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "discarding unreadable snapshot")
		return
	}
	engine.Restore(snapshot)

	a.mu.Lock()
	a.last[name] = raw
	a.mu.Unlock()
	a.metrics.IncRehydration(name, metrics.ResultRestored)
}

func (a *Adapter) write(name string, snapshot any) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	_ = a.writeContext(ctx, name, snapshot, false)
}

func (a *Adapter) writeContext(ctx context.Context, name string, snapshot any, force bool) error {
	start := time.Now()
	raw, err := json.Marshal(snapshot)
	if err != nil {
		a.fail(ctx, name, fmt.Errorf("encode snapshot: %w", err), start)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode snapshot")
	}

	a.mu.Lock()
	if a.degraded {
		a.mu.Unlock()
		a.metrics.ObserveWrite(name, metrics.ResultSkipped, 0)
		return pkgerrors.New(pkgerrors.CodeDependency, "persistence unavailable")
	}
	if !force && bytes.Equal(a.last[name], raw) {
		a.mu.Unlock()
		a.metrics.ObserveWrite(name, metrics.ResultSkipped, 0)
		return nil
	}
	a.mu.Unlock()

	if err := a.store.Put(ctx, a.Key(name), raw); err != nil {
		a.fail(ctx, name, err, start)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persistence unavailable")
	}

	a.mu.Lock()
	a.last[name] = raw
	a.mu.Unlock()
	a.metrics.ObserveWrite(name, metrics.ResultOK, time.Since(start))
	return nil
}

func (a *Adapter) fail(ctx context.Context, name string, err error, start time.Time) {
	a.markDegraded()
	a.metrics.ObserveWrite(name, metrics.ResultError, time.Since(start))

	fields := pkgerrors.Dump(err).Fields()
	fields["client_id"] = a.clientID
	fields["store"] = name
	fields["driver"] = a.store.Driver()
	a.logg.Error(a.logg.WithFields(ctx, fields), "snapshot write failed; persistence disabled for workspace", err)
}

func (a *Adapter) markDegraded() {
	a.mu.Lock()
	a.degraded = true
	a.mu.Unlock()
}

func (a *Adapter) snapshotBindings() []binding {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]binding(nil), a.bindings...)
}

// Flush writes every attached engine's current snapshot.
func (a *Adapter) Flush(ctx context.Context) error {
	var err error
	for _, b := range a.snapshotBindings() {
		if flushErr := b.flush(ctx); flushErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", b.name, flushErr))
		}
	}
	return err
}

// Close unsubscribes from every engine. Later changes are not persisted.
func (a *Adapter) Close() {
	a.mu.Lock()
	bindings := a.bindings
	a.bindings = nil
	a.mu.Unlock()
	for _, b := range bindings {
		b.cancel()
	}
}
