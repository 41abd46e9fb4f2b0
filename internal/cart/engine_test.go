package cart

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) Engine {
	t.Helper()
	clock := time.Unix(1_700_000_000, 0)
	engine, err := NewEngine(EngineParams{
		Now: func() time.Time { return clock },
	})
	require.NoError(t, err)
	return engine
}

func item(productID string, price int64, qty, maxQty int) AddItemInput {
	return AddItemInput{
		ProductID:   productID,
		Name:        "Item " + productID,
		Image:       "/img/" + productID + ".png",
		UnitPrice:   price,
		Quantity:    qty,
		MaxQuantity: maxQty,
		VendorID:    "v1",
		VendorName:  "Rahim Store",
	}
}

func strPtr(v string) *string { return &v }

func assertTotalsIdentity(t *testing.T, s State) {
	t.Helper()
	tt := s.Totals
	assert.Equal(t, tt.Subtotal+tt.TaxAmount+tt.ShippingAmount-tt.DiscountAmount, tt.Total, "totals identity broken: %+v", tt)
}

func TestNewEngineStartsEmptyWithZeroTotals(t *testing.T) {
	e := newTestEngine(t)
	s := e.State()
	assert.Empty(t, s.Items)
	assert.Equal(t, Totals{}, s.Totals)
	assert.Equal(t, "BDT", s.Currency)
}

func TestTotalsIdentityAfterEveryMutation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	s := e.AddItem(item("p1", 700, 2, 10))
	assertTotalsIdentity(t, s)
	s = e.AddItem(item("p2", 1250, 1, 3))
	assertTotalsIdentity(t, s)

	s, err := e.ApplyDiscount(ctx, "meaw20")
	require.NoError(t, err)
	assertTotalsIdentity(t, s)

	s = e.UpdateQuantity(s.Items[0].ID, 5)
	assertTotalsIdentity(t, s)
	s = e.RemoveItem(s.Items[1].ID)
	assertTotalsIdentity(t, s)
	s = e.RemoveDiscount()
	assertTotalsIdentity(t, s)
	s = e.Clear()
	assertTotalsIdentity(t, s)
}

func TestAddItemMergesSameProductAndVariant(t *testing.T) {
	cases := []struct {
		name   string
		q1, q2 int
		maxQty int
		want   int
	}{
		{name: "below cap", q1: 2, q2: 3, maxQty: 10, want: 5},
		{name: "clamped at cap", q1: 4, q2: 9, maxQty: 6, want: 6},
		{name: "exactly cap", q1: 3, q2: 3, maxQty: 6, want: 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			input := item("p1", 100, tc.q1, tc.maxQty)
			input.VariantID = strPtr("red")
			e.AddItem(input)

			input.Quantity = tc.q2
			s := e.AddItem(input)

			require.Len(t, s.Items, 1)
			assert.Equal(t, tc.want, s.Items[0].Quantity)
			assert.Equal(t, tc.want, s.Totals.ItemCount)
		})
	}
}

func TestAddItemDistinguishesMissingVariantFromEmptyVariant(t *testing.T) {
	e := newTestEngine(t)

	e.AddItem(item("p1", 100, 1, 5))
	withEmpty := item("p1", 100, 1, 5)
	withEmpty.VariantID = strPtr("")
	e.AddItem(withEmpty)
	withRed := item("p1", 100, 1, 5)
	withRed.VariantID = strPtr("red")
	s := e.AddItem(withRed)

	require.Len(t, s.Items, 3)
	assert.Nil(t, s.Items[0].VariantID)
	require.NotNil(t, s.Items[1].VariantID)
	assert.Equal(t, "", *s.Items[1].VariantID)
}

func TestAddItemDoesNotClampFirstInsertButFloorsAtOne(t *testing.T) {
	e := newTestEngine(t)

	s := e.AddItem(item("p1", 100, 8, 5))
	require.Len(t, s.Items, 1)
	assert.Equal(t, 8, s.Items[0].Quantity)

	s = e.AddItem(item("p2", 100, 0, 5))
	require.Len(t, s.Items, 2)
	assert.Equal(t, 1, s.Items[1].Quantity)
}

func TestAddItemMergeOnZeroInventoryKeepsOne(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 100, 1, 0))
	s := e.AddItem(item("p1", 100, 2, 0))
	require.Len(t, s.Items, 1)
	assert.Equal(t, 1, s.Items[0].Quantity)
}

func TestLineIDFormatAndUniqueness(t *testing.T) {
	e := newTestEngine(t)

	e.AddItem(item("p1", 100, 1, 5))
	red := item("p1", 100, 1, 5)
	red.VariantID = strPtr("red")
	e.AddItem(red)
	s := e.AddItem(item("p2", 100, 1, 5))

	require.Len(t, s.Items, 3)
	assert.Equal(t, "p1-default-1700000000000000000", s.Items[0].ID)
	assert.Equal(t, "p1-red-1700000000000000000", s.Items[1].ID)
	assert.NotEqual(t, s.Items[0].ID, s.Items[2].ID)
	assert.Equal(t, "p2-default-1700000000000000000", s.Items[2].ID)
}

func TestLineIDBumpsOnCollision(t *testing.T) {
	e := newTestEngine(t)
	s := e.AddItem(item("p1", 100, 1, 5))
	id := s.Items[0].ID

	s = e.RemoveItem("missing")
	require.Len(t, s.Items, 1)

	red := item("p1", 100, 1, 5)
	red.VariantID = strPtr("default")
	s = e.AddItem(red)
	require.Len(t, s.Items, 2)
	assert.NotEqual(t, id, s.Items[1].ID)
	assert.Equal(t, "p1-default-1700000000000000001", s.Items[1].ID)
}

func TestUpdateQuantityFloorAndCeiling(t *testing.T) {
	e := newTestEngine(t)
	s := e.AddItem(item("p1", 100, 2, 7))
	lineID := s.Items[0].ID

	s = e.UpdateQuantity(lineID, 7+5)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 7, s.Items[0].Quantity)

	s = e.UpdateQuantity(lineID, 3)
	assert.Equal(t, 3, s.Items[0].Quantity)

	s = e.UpdateQuantity(lineID, 0)
	assert.Empty(t, s.Items)
}

func TestUpdateQuantityNegativeRemovesAndUnknownIsNoop(t *testing.T) {
	e := newTestEngine(t)
	s := e.AddItem(item("p1", 100, 2, 7))

	s = e.UpdateQuantity("nope", 4)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)

	s = e.UpdateQuantity(s.Items[0].ID, -3)
	assert.Empty(t, s.Items)
}

func TestShippingThreshold(t *testing.T) {
	e := newTestEngine(t)
	s := e.AddItem(item("p1", 4999, 1, 5))
	assert.Equal(t, int64(4999), s.Totals.Subtotal)
	assert.Equal(t, int64(100), s.Totals.ShippingAmount)

	e2 := newTestEngine(t)
	s = e2.AddItem(item("p1", 5000, 1, 5))
	assert.Equal(t, int64(5000), s.Totals.Subtotal)
	assert.Equal(t, int64(0), s.Totals.ShippingAmount)
}

func TestTaxComputation(t *testing.T) {
	e := newTestEngine(t)
	s := e.AddItem(item("p1", 500, 2, 5))
	assert.Equal(t, int64(1000), s.Totals.Subtotal)
	assert.Equal(t, int64(50), s.Totals.TaxAmount)
	assert.Equal(t, int64(1000+50+100), s.Totals.Total)
}

func TestApplyDiscountWelcome(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 1000, 2, 5))

	s, err := e.ApplyDiscount(context.Background(), " welcome ")
	require.NoError(t, err)
	assert.Equal(t, int64(300), s.Totals.DiscountAmount)
	assert.Equal(t, "WELCOME", s.DiscountCode)
	assert.Equal(t, int64(2000+100+100-300), s.Totals.Total)
}

func TestApplyDiscountUnknownCodeLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 1000, 2, 5))
	before := e.State()

	s, err := e.ApplyDiscount(context.Background(), "FREEBIE")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDiscountInvalid))
	assert.Equal(t, before, s)
	assert.Equal(t, before, e.State())
}

func TestApplyDiscountUnknownCodeKeepsPriorDiscount(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 1000, 2, 5))
	_, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)

	e.RemoveDiscount()
	_, err = e.ApplyDiscount(context.Background(), "MEAW10")
	require.NoError(t, err)

	s, err := e.ApplyDiscount(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, int64(200), s.Totals.DiscountAmount)
}

func TestApplyDiscountWhileActiveIsRejected(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 1000, 2, 5))
	_, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)

	s, err := e.ApplyDiscount(context.Background(), "EID2024")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, int64(300), s.Totals.DiscountAmount)
	assert.Equal(t, "WELCOME", s.DiscountCode)

	e.RemoveDiscount()
	s, err = e.ApplyDiscount(context.Background(), "EID2024")
	require.NoError(t, err)
	assert.Equal(t, int64(500), s.Totals.DiscountAmount)
}

func TestDiscountStalenessAfterCartMutation(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 1000, 2, 5))
	s, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)
	require.Equal(t, int64(300), s.Totals.DiscountAmount)

	s = e.AddItem(item("p2", 1000, 1, 5))
	assert.Equal(t, int64(3000), s.Totals.Subtotal)
	assert.Equal(t, int64(300), s.Totals.DiscountAmount)
	assert.Equal(t, int64(3000+150+100-300), s.Totals.Total)
	assertTotalsIdentity(t, s)

	s = e.RemoveDiscount()
	assert.Equal(t, int64(0), s.Totals.DiscountAmount)
	s, err = e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)
	assert.Equal(t, int64(450), s.Totals.DiscountAmount)
}

func TestApplyDiscountHonorsCancellation(t *testing.T) {
	e, err := NewEngine(EngineParams{DiscountLatency: time.Hour})
	require.NoError(t, err)
	e.AddItem(item("p1", 1000, 2, 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := e.ApplyDiscount(ctx, "WELCOME")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), s.Totals.DiscountAmount)
}

func TestApplyDiscountWaitsForLatency(t *testing.T) {
	e, err := NewEngine(EngineParams{DiscountLatency: 20 * time.Millisecond})
	require.NoError(t, err)
	e.AddItem(item("p1", 1000, 2, 5))

	start := time.Now()
	_, err = e.ApplyDiscount(context.Background(), "MEAW10")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestClearResetsEverythingToZero(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 1000, 2, 5))
	_, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)

	s := e.Clear()
	assert.Empty(t, s.Items)
	assert.Equal(t, Totals{}, s.Totals)
	assert.Empty(t, s.DiscountCode)

	_, err = e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)
}

func TestRemoveItemKeepsDiscountAndRemovingUnknownIsNoop(t *testing.T) {
	e := newTestEngine(t)
	s := e.AddItem(item("p1", 1000, 2, 5))
	e.AddItem(item("p2", 500, 1, 5))
	_, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)

	s = e.RemoveItem(s.Items[0].ID)
	require.Len(t, s.Items, 1)
	assert.Equal(t, int64(375), s.Totals.DiscountAmount)

	s = e.RemoveItem("ghost")
	require.Len(t, s.Items, 1)
}

func TestSubscribersReceiveLinesOnly(t *testing.T) {
	e := newTestEngine(t)
	var snapshots []Snapshot
	cancel := e.Subscribe(func(s Snapshot) { snapshots = append(snapshots, s) })

	e.AddItem(item("p1", 1000, 2, 5))
	_, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)
	e.Clear()
	cancel()
	e.AddItem(item("p2", 1000, 1, 5))

	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[0].Items, 1)
	assert.Empty(t, snapshots[1].Items)

	raw, err := json.Marshal(snapshots[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "total")
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	e := newTestEngine(t)
	var persisted []byte
	e.Subscribe(func(s Snapshot) {
		raw, err := json.Marshal(s)
		require.NoError(t, err)
		persisted = raw
	})

	variant := item("p1", 1200, 2, 5)
	variant.VariantID = strPtr("xl")
	e.AddItem(variant)
	e.AddItem(item("p2", 800, 3, 4))
	want := e.State()

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(persisted, &snapshot))

	restarted := newTestEngine(t)
	restarted.Restore(snapshot)
	got := restarted.State()

	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.Totals, got.Totals)
}

func TestRestoreDropsMalformedLinesAndDiscount(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p9", 100, 1, 5))
	_, err := e.ApplyDiscount(context.Background(), "WELCOME")
	require.NoError(t, err)

	e.Restore(Snapshot{Items: []Line{
		{ID: "a", ProductID: "p1", UnitPrice: 100, Quantity: 0, MaxQuantity: 3},
		{ID: "", ProductID: "p2", UnitPrice: 100, Quantity: 1},
		{ID: "b", ProductID: "p1", UnitPrice: 100, Quantity: 2},
		{ID: "a", ProductID: "p3", UnitPrice: 100, Quantity: 2},
	}})

	s := e.State()
	require.Len(t, s.Items, 1)
	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.Equal(t, int64(0), s.Totals.DiscountAmount)
	assert.Empty(t, s.DiscountCode)
	assertTotalsIdentity(t, s)
}

func TestRestoreEmptySnapshotHasZeroTotals(t *testing.T) {
	e := newTestEngine(t)
	e.AddItem(item("p1", 100, 1, 5))
	e.Restore(Snapshot{})
	assert.Equal(t, Totals{}, e.State().Totals)
}

func TestStateReturnsCopies(t *testing.T) {
	e := newTestEngine(t)
	variant := item("p1", 100, 1, 5)
	variant.VariantID = strPtr("red")
	s := e.AddItem(variant)

	s.Items[0].Quantity = 99
	*s.Items[0].VariantID = "blue"

	fresh := e.State()
	assert.Equal(t, 1, fresh.Items[0].Quantity)
	assert.Equal(t, "red", *fresh.Items[0].VariantID)
}

func TestConcurrentMutationsKeepTotalsConsistent(t *testing.T) {
	e, err := NewEngine(EngineParams{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.AddItem(item("p1", 10, 1, 1000))
			assertTotalsIdentity(t, e.State())
		}()
	}
	wg.Wait()

	s := e.State()
	require.Len(t, s.Items, 1)
	assert.Equal(t, 50, s.Items[0].Quantity)
	assert.Equal(t, int64(500), s.Totals.Subtotal)
}

func TestNewEngineRejectsNegativePolicy(t *testing.T) {
	policy := DefaultPricingPolicy()
	policy.FlatShippingFee = -1
	_, err := NewEngine(EngineParams{Pricing: &policy})
	require.Error(t, err)

	_, err = NewEngine(EngineParams{DiscountLatency: -time.Second})
	require.Error(t, err)
}
