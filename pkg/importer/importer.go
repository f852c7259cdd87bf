// Package importer turns bank-statement exports into check account
// transactions on the remote ledger, deduplicating against previous runs.
package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementRecord is a normalized bank-statement row, independent of the
// export format it came from.
type StatementRecord struct {
	// ExternalID is the source-assigned record ID, normalized via record
	// type aliases so re-exports with renamed types dedup correctly.
	ExternalID string
	// Account is the source account number or IBAN. Empty when the source
	// identifies rows by currency only; the pipeline resolves it then.
	Account  string
	Currency string
	// Amount is signed: negative for outgoing movements.
	Amount    decimal.Decimal
	Payee     string
	Purpose   string
	EntryDate time.Time
	ValueDate time.Time

	// Neutral marks internal currency-exchange rows. They are skipped unless
	// the account mapping enables their currency pair.
	Neutral        bool
	SourceCurrency string
	TargetCurrency string
}

// Parser turns a bank export into normalized statement records, preserving
// the source file's row order.
type Parser interface {
	Parse(r io.Reader) ([]StatementRecord, error)
}

// UnknownAccountError reports a statement row whose account cannot be
// resolved through the account mapping.
type UnknownAccountError struct {
	Account  string
	Currency string
}

func (e *UnknownAccountError) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("unknown account %s (currency %s): add it to the account mapping", e.Account, e.Currency)
	}
	return fmt.Sprintf("no account mapped for currency %s: add it to the account mapping or ignore the currency", e.Currency)
}

// recordIDAliases rewrites record type names to the ones used by the old API
// export, keeping ledger keys stable across the switch to CSV exports.
var recordIDAliases = []struct {
	original    string
	replacement string
}{
	{"CARD_TRANSACTION", "CARD"},
	{"DIRECT_DEBIT_TRANSACTION", "DIRECT_DEBIT"},
}

// NormalizeRecordID applies the record type aliases to an external record ID.
func NormalizeRecordID(id string) string {
	for _, alias := range recordIDAliases {
		id = strings.ReplaceAll(id, alias.original, alias.replacement)
	}
	return id
}
