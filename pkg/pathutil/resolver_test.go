package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	resolver := New(Config{StateRoot: "/var/lib/sevsync"})

	assert.Equal(t, "/var/lib/sevsync", resolver.GetStateRoot())
	assert.Equal(t, filepath.Join("/var/lib/sevsync", "imported.json"), resolver.GetLedgerPath())
	assert.Equal(t, filepath.Join("/var/lib/sevsync", "rates.db"), resolver.GetRatesDBPath())
	assert.Equal(t, filepath.Join("/var/lib/sevsync", "accounts.yaml"), resolver.GetAccountMappingPath())
}

func TestNewOverrides(t *testing.T) {
	resolver := New(Config{
		StateRoot:      "/var/lib/sevsync",
		LedgerPath:     "/tmp/other-ledger.json",
		RatesDBPath:    "/tmp/other-rates.db",
		AccountMapping: "/tmp/other-accounts.yaml",
	})

	// Explicit paths win over the state root.
	assert.Equal(t, "/tmp/other-ledger.json", resolver.GetLedgerPath())
	assert.Equal(t, "/tmp/other-rates.db", resolver.GetRatesDBPath())
	assert.Equal(t, "/tmp/other-accounts.yaml", resolver.GetAccountMappingPath())
}

func TestNewEmptyStateRoot(t *testing.T) {
	resolver := New(Config{})

	// Wherever the platform default lands, it must be usable and consistent.
	assert.NotEmpty(t, resolver.GetStateRoot())
	assert.Equal(t, resolver.GetStateRoot(), filepath.Dir(resolver.GetLedgerPath()))
	assert.Equal(t, resolver.GetStateRoot(), filepath.Dir(resolver.GetRatesDBPath()))
}

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	resolver := New(Config{StateRoot: root})

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, resolver.EnsureDir(nested))
	assert.True(t, resolver.IsDir(nested))

	// Idempotent on existing directories.
	require.NoError(t, resolver.EnsureDir(nested))
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()
	resolver := New(Config{StateRoot: root})

	file := filepath.Join(root, "state", "imported.json")
	require.NoError(t, resolver.EnsureParentDir(file))

	assert.True(t, resolver.IsDir(filepath.Join(root, "state")))
	assert.False(t, resolver.FileExists(file))

	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	assert.True(t, resolver.FileExists(file))
	assert.False(t, resolver.IsDir(file))
}
