// Package dedup persists which bank-statement records have already been
// imported, so re-running an import never creates the same remote transaction
// twice.
//
// The ledger is loaded in full at process start and flushed after every mark.
// Marking happens only after the remote creation succeeded: a crash between
// remote success and the durable write means the next run re-imports that one
// record, which is the accepted trade-off for never double-creating on
// ordinary failures. Concurrent runs against the same ledger file are not
// supported.
package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Ledger is a durable record of (account key, external record ID) pairs that
// have been imported.
type Ledger struct {
	path string

	mu       sync.Mutex
	imported map[string]map[string]bool
}

// Load reads the ledger file at path. A missing file yields an empty ledger;
// a corrupt file is an error.
func Load(path string) (*Ledger, error) {
	ledger := &Ledger{
		path:     path,
		imported: make(map[string]map[string]bool),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import ledger %s: %w", path, err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse import ledger %s: %w", path, err)
	}
	for account, ids := range raw {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		ledger.imported[account] = set
	}
	return ledger, nil
}

// ShouldImport reports whether the given record has not been imported yet.
func (l *Ledger) ShouldImport(accountKey, externalID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.imported[accountKey][externalID]
}

// MarkImported records the given pair and flushes the ledger to disk. Call it
// only after the remote transaction was created successfully.
func (l *Ledger) MarkImported(accountKey, externalID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.imported[accountKey]
	if set == nil {
		set = make(map[string]bool)
		l.imported[accountKey] = set
	}
	set[externalID] = true

	return l.save()
}

// Count returns the total number of recorded imports across all accounts.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, set := range l.imported {
		total += len(set)
	}
	return total
}

// Counts returns the number of recorded imports per account key.
func (l *Ledger) Counts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[string]int, len(l.imported))
	for key, set := range l.imported {
		counts[key] = len(set)
	}
	return counts
}

// Path returns the ledger's backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// save writes the ledger atomically: marshal to a temp file in the target
// directory, then rename over the destination. A crash mid-write never
// corrupts previously recorded entries.
func (l *Ledger) save() error {
	raw := make(map[string][]string, len(l.imported))
	for account, set := range l.imported {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		raw[account] = ids
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal import ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace import ledger %s: %w", l.path, err)
	}
	return nil
}
