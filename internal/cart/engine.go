// Package cart owns the shopping cart line list and its derived totals.
package cart

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/angelmondragon/meaw-storefront/internal/latency"
	"github.com/angelmondragon/meaw-storefront/internal/signal"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/money"
)

// Engine exposes the cart operations. Every mutation returns the resulting state
// and notifies subscribers with the persistable snapshot before the lock is released.
type Engine interface {
	State() State
	AddItem(input AddItemInput) State
	RemoveItem(lineID string) State
	UpdateQuantity(lineID string, quantity int) State
	Clear() State
	ApplyDiscount(ctx context.Context, code string) (State, error)
	RemoveDiscount() State

	Snapshot() Snapshot
	Restore(snapshot Snapshot)
	Subscribe(fn func(Snapshot)) (cancel func())
}

// EngineParams configures a cart engine. Zero values fall back to the storefront defaults.
type EngineParams struct {
	Pricing         *PricingPolicy
	Catalog         DiscountCatalog
	DiscountLatency time.Duration
	Now             func() time.Time
}

type engine struct {
	mu           sync.Mutex
	lines        []Line
	totals       Totals
	discountCode string

	policy  PricingPolicy
	catalog DiscountCatalog
	latency time.Duration
	now     func() time.Time
	changes signal.Hub[Snapshot]
}

// NewEngine builds an empty cart.
func NewEngine(params EngineParams) (Engine, error) {
	policy := DefaultPricingPolicy()
	if params.Pricing != nil {
		policy = *params.Pricing
	}
	if policy.TaxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must be non-negative")
	}
	if policy.FreeShippingThreshold < 0 || policy.FlatShippingFee < 0 {
		return nil, fmt.Errorf("shipping amounts must be non-negative")
	}
	catalog := params.Catalog
	if catalog == nil {
		catalog = DefaultDiscountCatalog()
	}
	if params.DiscountLatency < 0 {
		return nil, fmt.Errorf("discount latency must be non-negative")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	e := &engine{
		policy:  policy,
		catalog: catalog,
		latency: params.DiscountLatency,
		now:     now,
	}
	e.recompute()
	return e, nil
}

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{Items: cloneLines(e.lines)}
}

func (e *engine) Subscribe(fn func(Snapshot)) func() {
	return e.changes.Subscribe(fn)
}

// AddItem merges into an existing (product, variant) line or appends a new one.
// A merge clamps to the existing line's cap; quantity never drops below one.
func (e *engine) AddItem(input AddItemInput) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	quantity := atLeastOne(input.Quantity)
	if idx := e.indexOfKey(input.ProductID, input.VariantID); idx >= 0 {
		line := &e.lines[idx]
		line.Quantity = atLeastOne(min(line.Quantity+quantity, line.MaxQuantity))
	} else {
		line := Line{
			ID:          e.nextLineID(input.ProductID, input.VariantID),
			ProductID:   input.ProductID,
			Name:        input.Name,
			Image:       input.Image,
			UnitPrice:   max(input.UnitPrice, 0),
			Quantity:    quantity,
			MaxQuantity: input.MaxQuantity,
			VendorID:    input.VendorID,
			VendorName:  input.VendorName,
		}
		if input.VariantID != nil {
			v := *input.VariantID
			line.VariantID = &v
		}
		e.lines = append(e.lines, line)
	}
	return e.commitLocked()
}

// RemoveItem drops the line with lineID. Unknown ids leave the lines untouched.
func (e *engine) RemoveItem(lineID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(lineID)
	return e.commitLocked()
}

// UpdateQuantity sets a line's quantity clamped to its cap; zero or less removes it.
func (e *engine) UpdateQuantity(lineID string, quantity int) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		e.removeLocked(lineID)
		return e.commitLocked()
	}
	if idx := e.indexOfID(lineID); idx >= 0 {
		line := &e.lines[idx]
		line.Quantity = atLeastOne(min(quantity, line.MaxQuantity))
	}
	return e.commitLocked()
}

// Clear empties the cart and zeroes every total, including any active discount.
func (e *engine) Clear() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.discountCode = ""
	e.totals = Totals{}
	e.changes.Emit(Snapshot{Items: []Line{}})
	return e.stateLocked()
}

// ApplyDiscount validates code after the simulated lookup latency and applies its rate
// to the current subtotal. Only one discount may be active at a time.
func (e *engine) ApplyDiscount(ctx context.Context, code string) (State, error) {
	if active := e.activeCode(); active != "" {
		return e.State(), discountActiveError(active)
	}

	if err := latency.Wait(ctx, e.latency); err != nil {
		return e.State(), fmt.Errorf("apply discount: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.discountCode != "" {
		return e.stateLocked(), discountActiveError(e.discountCode)
	}
	normalized, rate, ok := e.catalog.Lookup(code)
	if !ok {
		return e.stateLocked(), pkgerrors.New(pkgerrors.CodeDiscountInvalid, "invalid discount code").
			WithDetails(map[string]any{"code": code})
	}

	subtotal := ComputeTotals(e.lines, e.policy).Subtotal
	e.discountCode = normalized
	e.totals = e.totals.withDiscount(money.ApplyRate(subtotal, rate))
	return e.stateLocked(), nil
}

// RemoveDiscount zeroes the discount and restores the undiscounted total.
func (e *engine) RemoveDiscount() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.discountCode = ""
	e.totals = e.totals.withDiscount(0)
	return e.stateLocked()
}

// Restore replaces the lines with a persisted snapshot without notifying subscribers.
// Lines without an id or product, and repeats of an existing key, are dropped.
func (e *engine) Restore(snapshot Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	restored := make([]Line, 0, len(snapshot.Items))
	seenIDs := make(map[string]struct{}, len(snapshot.Items))
	for _, line := range cloneLines(snapshot.Items) {
		if line.ID == "" || line.ProductID == "" {
			continue
		}
		if _, dup := seenIDs[line.ID]; dup {
			continue
		}
		if indexOfKey(restored, line.ProductID, line.VariantID) >= 0 {
			continue
		}
		seenIDs[line.ID] = struct{}{}
		line.Quantity = atLeastOne(line.Quantity)
		line.UnitPrice = max(line.UnitPrice, 0)
		restored = append(restored, line)
	}
	e.lines = restored
	e.discountCode = ""
	e.recompute()
}

func (e *engine) activeCode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discountCode
}

// commitLocked recomputes totals from the lines, carrying the current discount amount
// unchanged, and publishes the snapshot.
func (e *engine) commitLocked() State {
	discount := e.totals.DiscountAmount
	e.totals = ComputeTotals(e.lines, e.policy).withDiscount(discount)
	e.changes.Emit(Snapshot{Items: cloneLines(e.lines)})
	return e.stateLocked()
}

// recompute is used for the initial and restored state, where an empty cart carries zero totals.
func (e *engine) recompute() {
	if len(e.lines) == 0 {
		e.totals = Totals{}
		return
	}
	e.totals = ComputeTotals(e.lines, e.policy)
}

func (e *engine) stateLocked() State {
	return State{
		Items:        cloneLines(e.lines),
		Totals:       e.totals,
		DiscountCode: e.discountCode,
		Currency:     e.policy.Currency,
	}
}

func (e *engine) removeLocked(lineID string) {
	if idx := e.indexOfID(lineID); idx >= 0 {
		e.lines = append(e.lines[:idx], e.lines[idx+1:]...)
	}
}

func (e *engine) indexOfID(lineID string) int {
	for i, line := range e.lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}

func (e *engine) indexOfKey(productID string, variantID *string) int {
	return indexOfKey(e.lines, productID, variantID)
}

func indexOfKey(lines []Line, productID string, variantID *string) int {
	for i, line := range lines {
		if line.matches(productID, variantID) {
			return i
		}
	}
	return -1
}

// nextLineID returns <productId>-<variantId|default>-<unix nanos>, bumping the
// timestamp until it is unique within the cart.
func (e *engine) nextLineID(productID string, variantID *string) string {
	variant := "default"
	if variantID != nil && *variantID != "" {
		variant = *variantID
	}
	stamp := e.now().UnixNano()
	for {
		id := productID + "-" + variant + "-" + strconv.FormatInt(stamp, 10)
		if e.indexOfID(id) < 0 {
			return id
		}
		stamp++
	}
}

func discountActiveError(code string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "a discount is already applied").
		WithDetails(map[string]any{"active_code": code})
}

func atLeastOne(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}
