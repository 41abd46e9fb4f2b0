package wishlist

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	at := time.Date(2024, 4, 14, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	for _, preexisting := range []bool{false, true} {
		e := NewEngine(fixedClock())
		if preexisting {
			e.Add("p1")
		}
		before := e.Contains("p1")

		_, now := e.Toggle("p1")
		assert.Equal(t, !before, now)
		_, now = e.Toggle("p1")
		assert.Equal(t, before, now)
		assert.Equal(t, before, e.Contains("p1"))
	}
}

func TestAddIsIdempotentAndKeepsFirstTimestamp(t *testing.T) {
	e := NewEngine(fixedClock())
	first := e.Add("p1")
	second := e.Add("p1")

	require.Len(t, second.Items, 1)
	assert.Equal(t, first.Items[0].AddedAt, second.Items[0].AddedAt)
	assert.Equal(t, 1, second.Count)
}

func TestRemoveMissingIsNoop(t *testing.T) {
	e := NewEngine(nil)
	e.Add("p1")
	s := e.Remove("p2")
	assert.Equal(t, 1, s.Count)

	s = e.Remove("p1")
	assert.Empty(t, s.Items)
}

func TestInsertionOrderAndClear(t *testing.T) {
	e := NewEngine(fixedClock())
	e.Add("b")
	e.Add("a")
	s := e.Add("c")

	ids := []string{s.Items[0].ProductID, s.Items[1].ProductID, s.Items[2].ProductID}
	assert.Equal(t, []string{"b", "a", "c"}, ids)

	s = e.Clear()
	assert.Zero(t, s.Count)
	assert.False(t, e.Contains("a"))
}

func TestBlankProductIDIsIgnored(t *testing.T) {
	e := NewEngine(nil)
	s := e.Add("   ")
	assert.Empty(t, s.Items)
}

func TestSnapshotSurvivesRestart(t *testing.T) {
	e := NewEngine(fixedClock())
	var persisted []byte
	e.Subscribe(func(s Snapshot) {
		raw, err := json.Marshal(s)
		require.NoError(t, err)
		persisted = raw
	})
	e.Add("p1")
	e.Add("p2")
	want := e.State()

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(persisted, &snapshot))

	restarted := NewEngine(nil)
	restarted.Restore(snapshot)
	got := restarted.State()

	require.Len(t, got.Items, 2)
	for i := range want.Items {
		assert.Equal(t, want.Items[i].ProductID, got.Items[i].ProductID)
		assert.True(t, want.Items[i].AddedAt.Equal(got.Items[i].AddedAt))
	}
}

func TestRestoreDropsDuplicatesAndBlanks(t *testing.T) {
	e := NewEngine(nil)
	e.Restore(Snapshot{Items: []Entry{{ProductID: "a"}, {ProductID: ""}, {ProductID: "a"}, {ProductID: "b"}}})
	assert.Equal(t, 2, e.State().Count)
}

func TestEveryMutationNotifies(t *testing.T) {
	e := NewEngine(nil)
	calls := 0
	cancel := e.Subscribe(func(Snapshot) { calls++ })

	e.Add("a")
	e.Toggle("a")
	e.Remove("a")
	e.Clear()
	cancel()
	e.Add("b")

	assert.Equal(t, 4, calls)
}
