package currencylist

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/fxlist/internal/model"
)

func sample() []model.Currency {
	return []model.Currency{
		{ISOCode: "EUR", RateBasedOnEuro: 1.0},
		{ISOCode: "USD", RateBasedOnEuro: 1.1},
		{ISOCode: "GBP", RateBasedOnEuro: 0.9},
	}
}

func codes(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ISOCode
	}
	return out
}

func activeCount(rows []Row) int {
	n := 0
	for _, r := range rows {
		if !r.CanChangeDisplayedRate {
			n++
		}
	}
	return n
}

func newStore() *Store { return New(0, nil) }

func TestStore_ReplaceAll(t *testing.T) {
	s := newStore()

	ch := s.ReplaceAll(sample())
	assert.True(t, ch.Reset)
	assert.False(t, ch.Moved())

	rows := s.Snapshot()
	assert.Equal(t, []string{"EUR", "USD", "GBP"}, codes(rows))
	assert.Equal(t, 0, activeCount(rows))
	for _, r := range rows {
		assert.Equal(t, r.RateBasedOnEuro, r.DisplayedValue, "no active row shows the raw rate")
	}
}

func TestStore_ReplaceAll_EmptyIsNoop(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())

	ch := s.ReplaceAll(nil)
	assert.True(t, ch.Empty())
	assert.Equal(t, []string{"EUR", "USD", "GBP"}, codes(s.Snapshot()))

	ch = s.ReplaceAll([]model.Currency{})
	assert.True(t, ch.Empty())
	assert.Equal(t, 3, s.Len())
}

func TestStore_ReplaceAll_DropsDuplicatesAndBadRates(t *testing.T) {
	s := newStore()
	s.ReplaceAll([]model.Currency{
		{ISOCode: "EUR", RateBasedOnEuro: 1},
		{ISOCode: "USD", RateBasedOnEuro: 1.1},
		{ISOCode: "USD", RateBasedOnEuro: 9.9},
		{ISOCode: "JPY", RateBasedOnEuro: 0},
		{ISOCode: "GBP", RateBasedOnEuro: -1},
		{ISOCode: "CHF", RateBasedOnEuro: math.NaN()},
	})

	rows := s.Snapshot()
	assert.Equal(t, []string{"EUR", "USD"}, codes(rows))
	assert.Equal(t, 1.1, rows[1].RateBasedOnEuro, "first occurrence wins")
}

func TestStore_Apply_ReplacesThenMerges(t *testing.T) {
	s := newStore()

	ch := s.Apply(sample())
	assert.True(t, ch.Reset)

	ch = s.Apply([]model.Currency{{ISOCode: "USD", RateBasedOnEuro: 1.2}})
	assert.False(t, ch.Reset)
	assert.Equal(t, []string{"USD"}, ch.Changed)

	r, ok := s.Row("USD")
	require.True(t, ok)
	assert.Equal(t, 1.2, r.RateBasedOnEuro)
}

func TestStore_Merge(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())
	s.SelectAndPromote("GBP")
	s.EditActiveValue("5")

	ch := s.Merge([]model.Currency{
		{ISOCode: "CHF", RateBasedOnEuro: 1.05},
		{ISOCode: "USD", RateBasedOnEuro: 1.2},
		{ISOCode: "JPY", RateBasedOnEuro: 120},
		{ISOCode: "CHF", RateBasedOnEuro: 7},
	})

	assert.Equal(t, []string{"CHF", "JPY"}, ch.Appended)
	assert.Equal(t, []string{"USD"}, ch.Changed)
	assert.False(t, ch.Dropped)

	rows := s.Snapshot()
	assert.Equal(t, []string{"GBP", "EUR", "USD", "CHF", "JPY"}, codes(rows))
	assert.Equal(t, 5.0, rows[0].EnteredValue, "entered value survives the merge")
	assert.False(t, rows[0].CanChangeDisplayedRate, "active flag survives the merge")
	assert.Equal(t, 1.05, rows[3].RateBasedOnEuro)
	assert.InDelta(t, 5*(120/0.9), rows[4].DisplayedValue, 1e-9)
}

func TestStore_Merge_NeverShrinks(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())

	s.Merge([]model.Currency{{ISOCode: "USD", RateBasedOnEuro: 1.3}})
	assert.Equal(t, 3, s.Len())

	s.Merge(nil)
	assert.Equal(t, 3, s.Len())

	r, _ := s.Row("EUR")
	assert.Equal(t, 1.0, r.RateBasedOnEuro, "absent codes are left alone")
}

func TestStore_Merge_Idempotent(t *testing.T) {
	update := []model.Currency{
		{ISOCode: "EUR", RateBasedOnEuro: 1},
		{ISOCode: "USD", RateBasedOnEuro: 1.15},
		{ISOCode: "GBP", RateBasedOnEuro: 0.85},
		{ISOCode: "SEK", RateBasedOnEuro: 11.2},
	}

	once := newStore()
	once.ReplaceAll(sample())
	once.SelectAndPromote("USD")
	once.EditActiveValue("42")
	once.Merge(update)

	twice := newStore()
	twice.ReplaceAll(sample())
	twice.SelectAndPromote("USD")
	twice.EditActiveValue("42")
	twice.Merge(update)
	ch := twice.Merge(update)

	assert.Empty(t, ch.Changed)
	assert.Empty(t, ch.Appended)
	assert.Equal(t, once.Snapshot(), twice.Snapshot())
}

func TestStore_SelectAndPromote(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())

	ch := s.SelectAndPromote("USD")
	assert.Equal(t, 1, ch.MovedFrom)
	assert.Equal(t, 0, ch.MovedTo)
	assert.True(t, ch.Moved())

	rows := s.Snapshot()
	assert.Equal(t, []string{"USD", "EUR", "GBP"}, codes(rows))
	assert.False(t, rows[0].CanChangeDisplayedRate)
	assert.True(t, rows[1].CanChangeDisplayedRate)
	assert.True(t, rows[2].CanChangeDisplayedRate)

	// nothing typed yet: every other row reads 0
	for _, r := range rows[1:] {
		assert.Equal(t, 0.0, r.DisplayedValue)
	}
	assert.ElementsMatch(t, []string{"USD", "EUR", "GBP"}, ch.Changed)
}

func TestStore_SelectAndPromote_KeepsRemainingOrder(t *testing.T) {
	s := newStore()
	s.ReplaceAll([]model.Currency{
		{ISOCode: "A", RateBasedOnEuro: 1},
		{ISOCode: "B", RateBasedOnEuro: 2},
		{ISOCode: "C", RateBasedOnEuro: 3},
		{ISOCode: "D", RateBasedOnEuro: 4},
		{ISOCode: "E", RateBasedOnEuro: 5},
	})

	s.SelectAndPromote("D")
	assert.Equal(t, []string{"D", "A", "B", "C", "E"}, codes(s.Snapshot()))

	s.SelectAndPromote("B")
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, codes(s.Snapshot()))
}

func TestStore_SelectAndPromote_SingleActiveAtTop(t *testing.T) {
	for _, iso := range []string{"EUR", "USD", "GBP"} {
		for _, first := range []string{"EUR", "USD", "GBP"} {
			t.Run(first+"->"+iso, func(t *testing.T) {
				s := newStore()
				s.ReplaceAll(sample())
				s.SelectAndPromote(first)
				s.EditActiveValue("3")

				s.SelectAndPromote(iso)
				rows := s.Snapshot()
				assert.Equal(t, 1, activeCount(rows))
				assert.Equal(t, iso, rows[0].ISOCode)
				assert.False(t, rows[0].CanChangeDisplayedRate)
			})
		}
	}
}

func TestStore_SelectAndPromote_UnknownCode(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())
	s.SelectAndPromote("GBP")
	before := s.Snapshot()

	ch := s.SelectAndPromote("XYZ")
	assert.True(t, ch.Empty())
	assert.Equal(t, -1, ch.MovedFrom)
	assert.Equal(t, before, s.Snapshot())

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "GBP", active.ISOCode)
}

func TestStore_SelectAndPromote_UsesExistingEnteredValue(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())
	s.SelectAndPromote("GBP")
	s.EditActiveValue("9")
	s.SelectAndPromote("USD")

	// GBP keeps the 9 it had; it is simply no longer the reference
	s.SelectAndPromote("GBP")
	rows := s.Snapshot()
	assert.Equal(t, 9.0, rows[0].EnteredValue)
	usd, _ := s.Row("USD")
	assert.InDelta(t, 9*(1.1/0.9), usd.DisplayedValue, 1e-9)
}

func TestStore_EditActiveValue_Scenario(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())
	s.SelectAndPromote("USD")

	ch := s.EditActiveValue("10")
	assert.ElementsMatch(t, []string{"USD", "EUR", "GBP"}, ch.Changed)

	eur, _ := s.Row("EUR")
	gbp, _ := s.Row("GBP")
	assert.InDelta(t, 9.0909, eur.DisplayedValue, 1e-4)
	assert.InDelta(t, 8.1818, gbp.DisplayedValue, 1e-4)
	assert.Equal(t, "9.09", eur.DisplayText())
	assert.Equal(t, "8.18", gbp.DisplayText())
}

func TestStore_EditActiveValue_ParseFailureIsZero(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())
	s.SelectAndPromote("USD")
	s.EditActiveValue("10")

	ch := s.EditActiveValue("ten")
	assert.ElementsMatch(t, []string{"USD", "EUR", "GBP"}, ch.Changed)
	for _, r := range s.Snapshot() {
		assert.Equal(t, 0.0, r.DisplayedValue)
	}
}

func TestStore_EditActiveValue_NoActive(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())

	ch := s.EditActiveValue("10")
	assert.True(t, ch.Empty())
	eur, _ := s.Row("EUR")
	assert.Equal(t, 1.0, eur.DisplayedValue)
}

func TestStore_EditActiveValue_ReportsOnlyChanges(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())
	s.SelectAndPromote("USD")
	s.EditActiveValue("10")

	ch := s.EditActiveValue("10.0")
	assert.Empty(t, ch.Changed)
}

func TestStore_MoveWindowDropsMerges(t *testing.T) {
	now := time.Date(2019, 8, 24, 13, 0, 0, 0, time.UTC)
	s := New(300*time.Millisecond, nil)
	s.now = func() time.Time { return now }
	s.ReplaceAll(sample())

	s.SelectAndPromote("GBP")

	ch := s.Merge([]model.Currency{{ISOCode: "USD", RateBasedOnEuro: 2}})
	assert.True(t, ch.Dropped)
	usd, _ := s.Row("USD")
	assert.Equal(t, 1.1, usd.RateBasedOnEuro)

	ch = s.Apply([]model.Currency{{ISOCode: "USD", RateBasedOnEuro: 2}})
	assert.True(t, ch.Dropped)

	now = now.Add(301 * time.Millisecond)
	ch = s.Merge([]model.Currency{{ISOCode: "USD", RateBasedOnEuro: 2}})
	assert.False(t, ch.Dropped)
	usd, _ = s.Row("USD")
	assert.Equal(t, 2.0, usd.RateBasedOnEuro)
}

func TestStore_MoveSettledReopensMerges(t *testing.T) {
	s := New(time.Hour, nil)
	s.ReplaceAll(sample())
	s.SelectAndPromote("GBP")

	assert.True(t, s.Merge(sample()).Dropped)

	s.MoveSettled()
	assert.False(t, s.Merge(sample()).Dropped)
}

func TestStore_PromoteInPlaceDoesNotOpenWindow(t *testing.T) {
	s := New(time.Hour, nil)
	s.ReplaceAll(sample())

	ch := s.SelectAndPromote("EUR")
	assert.Equal(t, 0, ch.MovedFrom)
	assert.False(t, ch.Moved())
	assert.False(t, s.Merge(sample()).Dropped)
}

func TestStore_ConcurrentUse(t *testing.T) {
	s := newStore()
	s.ReplaceAll(sample())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			s.Merge([]model.Currency{{ISOCode: fmt.Sprintf("C%02d", i%10), RateBasedOnEuro: float64(i + 1)}})
		}(i)
		go func(i int) {
			defer wg.Done()
			s.SelectAndPromote([]string{"EUR", "USD", "GBP"}[i%3])
		}(i)
		go func(i int) {
			defer wg.Done()
			s.EditActiveValue(fmt.Sprint(i))
		}(i)
	}
	wg.Wait()

	rows := s.Snapshot()
	assert.Equal(t, 13, len(rows))
	assert.Equal(t, 1, activeCount(rows))
	assert.False(t, rows[0].CanChangeDisplayedRate)
}
