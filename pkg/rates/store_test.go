package rates

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "rates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedDays(t *testing.T, store *Store) {
	t.Helper()
	// Friday and the following Monday: the weekend has no quotes.
	_, _, err := store.ImportDays([]Day{
		{Date: "2026-07-17", Rates: map[string]decimal.Decimal{
			"USD": dec("1.10"),
			"GBP": dec("0.85"),
		}},
		{Date: "2026-07-20", Rates: map[string]decimal.Decimal{
			"USD": dec("1.12"),
			"GBP": dec("0.86"),
		}},
	}, "")
	require.NoError(t, err)
}

func TestImportDays(t *testing.T) {
	store := openTestStore(t)

	imported, latest, err := store.ImportDays([]Day{
		{Date: "2026-07-17", Rates: map[string]decimal.Decimal{"USD": dec("1.10")}},
	}, "")
	require.NoError(t, err)

	// Each quote is stored in both directions.
	assert.Equal(t, 2, imported)
	assert.Equal(t, "2026-07-17", latest)

	last, err := store.LastUpdate()
	require.NoError(t, err)
	assert.Equal(t, "2026-07-17", last)
}

func TestImportDaysSkipThrough(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	// Re-importing the same feed skips everything at or before the watermark.
	imported, latest, err := store.ImportDays([]Day{
		{Date: "2026-07-17", Rates: map[string]decimal.Decimal{"USD": dec("1.10")}},
		{Date: "2026-07-20", Rates: map[string]decimal.Decimal{"USD": dec("1.12")}},
		{Date: "2026-07-21", Rates: map[string]decimal.Decimal{"USD": dec("1.13")}},
	}, "2026-07-20")
	require.NoError(t, err)

	assert.Equal(t, 2, imported)
	assert.Equal(t, "2026-07-21", latest)
}

func TestGetRateExactDate(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	date, rate, err := store.GetRate("EUR", "USD", "2026-07-17", StrategyNone)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-17", date)
	assert.True(t, rate.Equal(dec("1.10")))
}

func TestGetRateInverse(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	_, rate, err := store.GetRate("USD", "EUR", "2026-07-17", StrategyNone)
	require.NoError(t, err)
	// 1 / 1.10
	assert.True(t, rate.Round(8).Equal(dec("0.90909091")), "rate = %s", rate)
}

func TestGetRateMissingDateStrategies(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	// Saturday. No quotes exist.
	_, _, err := store.GetRate("EUR", "USD", "2026-07-18", StrategyNone)
	assert.ErrorIs(t, err, ErrNoRate)

	date, rate, err := store.GetRate("EUR", "USD", "2026-07-18", StrategyBefore)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-17", date)
	assert.True(t, rate.Equal(dec("1.10")))

	date, rate, err = store.GetRate("EUR", "USD", "2026-07-18", StrategyAfter)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-20", date)
	assert.True(t, rate.Equal(dec("1.12")))

	// Saturday is one day from Friday and two from Monday.
	date, _, err = store.GetRate("EUR", "USD", "2026-07-18", StrategyClosest)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-17", date)
}

func TestGetRateLatest(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	date, rate, err := store.GetRate("EUR", "USD", "latest", StrategyNone)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-20", date)
	assert.True(t, rate.Equal(dec("1.12")))
}

func TestGetRateLatestOnEmptyStore(t *testing.T) {
	store := openTestStore(t)

	_, _, err := store.GetRate("EUR", "USD", "latest", StrategyNone)
	assert.ErrorIs(t, err, ErrNoRate)
}

func TestGetRateCross(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	// USD -> GBP goes through EUR: 0.85 / 1.10.
	date, rate, err := store.GetRate("USD", "GBP", "2026-07-17", StrategyNone)
	require.NoError(t, err)
	assert.Equal(t, "2026-07-17", date)
	assert.True(t, rate.Round(8).Equal(dec("0.77272727")), "rate = %s", rate)
}

func TestGetRateUnknownCurrency(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	_, _, err := store.GetRate("EUR", "XXX", "2026-07-17", StrategyClosest)
	assert.ErrorIs(t, err, ErrNoRate)
}

func TestListCurrencies(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	currencies, err := store.ListCurrencies()
	require.NoError(t, err)
	// EUR is seeded by the schema; the rest come from the imported days.
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, currencies)
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	seedDays(t, store)

	stats, err := store.GetStats()
	require.NoError(t, err)

	assert.Equal(t, "2026-07-20", stats.LastUpdated)
	assert.Equal(t, 3, stats.CurrencyCount)
	// 2 days x 2 currencies x 2 directions.
	assert.Equal(t, 8, stats.RateCount)
	assert.Equal(t, "2026-07-17", stats.MinDate)
	assert.Equal(t, "2026-07-20", stats.MaxDate)
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"", "before", "after", "closest"} {
		if _, err := ParseStrategy(valid); err != nil {
			t.Errorf("ParseStrategy(%q) error = %v", valid, err)
		}
	}
	if _, err := ParseStrategy("sideways"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, _, err = store.ImportDays([]Day{
		{Date: "2026-07-17", Rates: map[string]decimal.Decimal{"USD": dec("1.10")}},
	}, "")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening applies the schema again without clobbering data.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, rate, err := reopened.GetRate("EUR", "USD", "2026-07-17", StrategyNone)
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("1.10")))
}
