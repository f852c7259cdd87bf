// Package pathutil provides centralized path management for sevsync state files.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathResolver manages paths for the import ledger, the rates database and
// the account mapping file.
type PathResolver struct {
	stateRoot      string
	ledgerPath     string
	ratesDBPath    string
	accountMapping string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// StateRoot is the root directory for all durable state (e.g., ~/.config/sevsync)
	StateRoot string
	// LedgerPath is the path to the import dedup ledger file
	LedgerPath string
	// RatesDBPath is the path to the SQLite database holding exchange rates
	RatesDBPath string
	// AccountMapping is the path to the account mapping YAML file
	AccountMapping string
}

// New creates a new PathResolver with the given configuration.
// If StateRoot is empty, it defaults to {user config dir}/sevsync.
// If LedgerPath is empty, it defaults to {StateRoot}/imported.json.
// If RatesDBPath is empty, it defaults to {StateRoot}/rates.db.
// If AccountMapping is empty, it defaults to {StateRoot}/accounts.yaml.
func New(config Config) *PathResolver {
	stateRoot := config.StateRoot
	if stateRoot == "" {
		stateRoot = defaultStateRoot()
	}

	ledgerPath := config.LedgerPath
	if ledgerPath == "" {
		ledgerPath = filepath.Join(stateRoot, "imported.json")
	}

	ratesDBPath := config.RatesDBPath
	if ratesDBPath == "" {
		ratesDBPath = filepath.Join(stateRoot, "rates.db")
	}

	accountMapping := config.AccountMapping
	if accountMapping == "" {
		accountMapping = filepath.Join(stateRoot, "accounts.yaml")
	}

	return &PathResolver{
		stateRoot:      stateRoot,
		ledgerPath:     ledgerPath,
		ratesDBPath:    ratesDBPath,
		accountMapping: accountMapping,
	}
}

// defaultStateRoot places state under the platform config directory,
// falling back to a dotdir in $HOME when none is available.
func defaultStateRoot() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sevsync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sevsync"
	}
	return filepath.Join(home, ".sevsync")
}

// GetStateRoot returns the state root directory.
func (p *PathResolver) GetStateRoot() string {
	return p.stateRoot
}

// GetLedgerPath returns the import ledger file path.
func (p *PathResolver) GetLedgerPath() string {
	return p.ledgerPath
}

// GetRatesDBPath returns the rates database file path.
func (p *PathResolver) GetRatesDBPath() string {
	return p.ratesDBPath
}

// GetAccountMappingPath returns the account mapping file path.
func (p *PathResolver) GetAccountMappingPath() string {
	return p.accountMapping
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return p.EnsureDir(dir)
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// IsDir checks if a path is a directory.
func (p *PathResolver) IsDir(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}
