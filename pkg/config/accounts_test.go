package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingYAML = `accounts:
  - account: "12345678"
    currency: EUR
  - account: "12345678"
    currency: USD
  - account: DE02120300000000202051
    currency: CHF

ignore_currencies:
  - GBP

neutral_pairs:
  - source: EUR
    target: USD
`

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "account-mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAccountMapping(t *testing.T) {
	mapping, err := LoadAccountMapping(writeMapping(t, mappingYAML))
	require.NoError(t, err)

	account, ok := mapping.AccountForCurrency("EUR")
	require.True(t, ok)
	assert.Equal(t, "12345678", account)

	// Lookup is case-insensitive on currency.
	account, ok = mapping.AccountForCurrency("usd")
	require.True(t, ok)
	assert.Equal(t, "12345678", account)

	_, ok = mapping.AccountForCurrency("JPY")
	assert.False(t, ok)

	assert.True(t, mapping.HasAccount("DE02120300000000202051"))
	assert.False(t, mapping.HasAccount("99999999"))
	assert.ElementsMatch(t, []string{"EUR", "USD"}, mapping.CurrenciesForAccount("12345678"))
}

func TestIgnoredCurrencies(t *testing.T) {
	mapping, err := LoadAccountMapping(writeMapping(t, mappingYAML))
	require.NoError(t, err)

	assert.True(t, mapping.IsIgnoredCurrency("GBP"))
	assert.True(t, mapping.IsIgnoredCurrency("gbp"))
	assert.False(t, mapping.IsIgnoredCurrency("EUR"))
}

func TestNeutralPairs(t *testing.T) {
	mapping, err := LoadAccountMapping(writeMapping(t, mappingYAML))
	require.NoError(t, err)

	assert.True(t, mapping.IsNeutralAllowed("EUR", "USD"))
	// Direction matters.
	assert.False(t, mapping.IsNeutralAllowed("USD", "EUR"))
	assert.False(t, mapping.IsNeutralAllowed("EUR", "CHF"))
}

func TestDuplicateCurrencyRejected(t *testing.T) {
	_, err := LoadAccountMapping(writeMapping(t, `accounts:
  - account: "111"
    currency: EUR
  - account: "222"
    currency: EUR
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate currency EUR")
}

func TestIncompleteEntryRejected(t *testing.T) {
	_, err := LoadAccountMapping(writeMapping(t, `accounts:
  - account: "111"
`))
	assert.Error(t, err)
}

func TestLedgerKey(t *testing.T) {
	assert.Equal(t, "EUR-12345678", LedgerKey("eur", "12345678"))
	assert.Equal(t, "USD-12345678", LedgerKey("USD", "12345678"))
}
