// Package wishlist keeps the set of saved products, in the order they were saved.
package wishlist

import (
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/meaw-storefront/internal/signal"
)

// Entry is a saved product.
type Entry struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// State lists the entries in insertion order.
type State struct {
	Items []Entry `json:"items"`
	Count int     `json:"count"`
}

// Snapshot is the persisted wishlist.
type Snapshot struct {
	Items []Entry `json:"items"`
}

// Engine exposes the wishlist operations.
type Engine interface {
	State() State
	Add(productID string) State
	Remove(productID string) State
	Toggle(productID string) (State, bool)
	Contains(productID string) bool
	Clear() State

	Snapshot() Snapshot
	Restore(snapshot Snapshot)
	Subscribe(fn func(Snapshot)) (cancel func())
}

type engine struct {
	mu      sync.Mutex
	items   []Entry
	now     func() time.Time
	changes signal.Hub[Snapshot]
}

// NewEngine builds an empty wishlist. now may be nil.
func NewEngine(now func() time.Time) Engine {
	if now == nil {
		now = time.Now
	}
	return &engine{now: now}
}

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{Items: e.copyLocked()}
}

func (e *engine) Subscribe(fn func(Snapshot)) func() {
	return e.changes.Subscribe(fn)
}

// Add saves productID. Saving a product twice keeps the first entry.
func (e *engine) Add(productID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addLocked(productID)
	return e.commitLocked()
}

// Remove drops productID if present.
func (e *engine) Remove(productID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(productID)
	return e.commitLocked()
}

// Toggle flips membership and reports whether productID is now saved.
func (e *engine) Toggle(productID string) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexLocked(productID) >= 0 {
		e.removeLocked(productID)
		return e.commitLocked(), false
	}
	e.addLocked(productID)
	return e.commitLocked(), e.indexLocked(productID) >= 0
}

func (e *engine) Contains(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexLocked(productID) >= 0
}

func (e *engine) Clear() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = nil
	return e.commitLocked()
}

// Restore loads a persisted snapshot without notifying subscribers. Blank and repeated ids are dropped.
func (e *engine) Restore(snapshot Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	for _, entry := range snapshot.Items {
		id := strings.TrimSpace(entry.ProductID)
		if id == "" || e.indexLocked(id) >= 0 {
			continue
		}
		e.items = append(e.items, Entry{ProductID: id, AddedAt: entry.AddedAt})
	}
}

func (e *engine) addLocked(productID string) {
	productID = strings.TrimSpace(productID)
	if productID == "" || e.indexLocked(productID) >= 0 {
		return
	}
	e.items = append(e.items, Entry{ProductID: productID, AddedAt: e.now()})
}

func (e *engine) removeLocked(productID string) {
	if idx := e.indexLocked(productID); idx >= 0 {
		e.items = append(e.items[:idx], e.items[idx+1:]...)
	}
}

func (e *engine) indexLocked(productID string) int {
	productID = strings.TrimSpace(productID)
	for i, entry := range e.items {
		if entry.ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *engine) commitLocked() State {
	e.changes.Emit(Snapshot{Items: e.copyLocked()})
	return e.stateLocked()
}

func (e *engine) stateLocked() State {
	items := e.copyLocked()
	return State{Items: items, Count: len(items)}
}

func (e *engine) copyLocked() []Entry {
	out := make([]Entry, len(e.items))
	copy(out, e.items)
	return out
}
