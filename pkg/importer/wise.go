package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// wiseDateLayout is the timestamp layout of Wise CSV exports.
const wiseDateLayout = "2006-01-02 15:04:05"

// Column names of the Wise multi-currency account CSV export.
const (
	wiseColID             = "ID"
	wiseColStatus         = "Status"
	wiseColDirection      = "Direction"
	wiseColSourceCurrency = "Source currency"
	wiseColTargetCurrency = "Target currency"
	wiseColSourceName     = "Source name"
	wiseColTargetName     = "Target name"
	wiseColSourceAmount   = "Source amount (after fees)"
	wiseColTargetAmount   = "Target amount (after fees)"
	wiseColSourceFee      = "Source fee amount"
	wiseColExchangeRate   = "Exchange rate"
	wiseColReference      = "Reference"
	wiseColCreatedOn      = "Created on"
	wiseColFinishedOn     = "Finished on"
)

var wiseRequiredColumns = []string{
	wiseColID, wiseColStatus, wiseColDirection,
	wiseColSourceCurrency, wiseColTargetCurrency,
	wiseColSourceName, wiseColTargetName,
	wiseColSourceAmount, wiseColTargetAmount, wiseColSourceFee,
	wiseColExchangeRate, wiseColReference,
	wiseColCreatedOn, wiseColFinishedOn,
}

// WiseParser parses Wise multi-currency account CSV exports. A Wise export
// lists movements of every balance in one file; rows carry their own currency
// and the pipeline routes them to accounts.
type WiseParser struct {
	logger *slog.Logger
}

// NewWiseParser creates a Wise CSV parser. A nil logger falls back to slog's
// default.
func NewWiseParser(logger *slog.Logger) *WiseParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &WiseParser{logger: logger}
}

// Parse reads a Wise CSV export. Refunded and cancelled rows are skipped; an
// unknown status or direction aborts the parse.
func (p *WiseParser) Parse(r io.Reader) ([]StatementRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range wiseRequiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q in Wise CSV export", name)
		}
	}

	var records []StatementRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		record, err := p.parseRow(func(column string) string {
			return row[columns[column]]
		})
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}

// parseRow turns one CSV row into a statement record. A nil record with nil
// error means the row was skipped.
func (p *WiseParser) parseRow(field func(string) string) (*StatementRecord, error) {
	id := field(wiseColID)

	switch status := field(wiseColStatus); status {
	case "REFUNDED":
		p.logger.Info("Skipping refunded transaction", "record_id", id)
		return nil, nil
	case "CANCELLED":
		p.logger.Info("Skipping cancelled transaction", "record_id", id)
		return nil, nil
	case "COMPLETED":
	default:
		return nil, fmt.Errorf("unknown status %q for record %s", status, id)
	}

	var record StatementRecord
	direction := field(wiseColDirection)
	switch direction {
	case "IN":
		record.Currency = field(wiseColTargetCurrency)
		record.Payee = field(wiseColSourceName)
		amount, err := parseWiseAmount(field(wiseColTargetAmount), wiseColTargetAmount, id)
		if err != nil {
			return nil, err
		}
		record.Amount = amount
	case "OUT":
		record.Currency = field(wiseColSourceCurrency)
		record.Payee = field(wiseColTargetName)
		amount, err := parseWiseAmount(field(wiseColSourceAmount), wiseColSourceAmount, id)
		if err != nil {
			return nil, err
		}
		fee := decimal.Zero
		if feeStr := field(wiseColSourceFee); feeStr != "" {
			fee, err = parseWiseAmount(feeStr, wiseColSourceFee, id)
			if err != nil {
				return nil, err
			}
		}
		record.Amount = amount.Add(fee).Neg()
	case "NEUTRAL":
		record.Neutral = true
		record.SourceCurrency = field(wiseColSourceCurrency)
		record.TargetCurrency = field(wiseColTargetCurrency)
		record.Currency = record.TargetCurrency
		record.Payee = field(wiseColSourceName)
		amount, err := parseWiseAmount(field(wiseColTargetAmount), wiseColTargetAmount, id)
		if err != nil {
			return nil, err
		}
		record.Amount = amount
	default:
		return nil, fmt.Errorf("unknown direction %q for record %s", direction, id)
	}

	reference := field(wiseColReference)
	// Card transactions come without a reference; synthesize one from the
	// amount actually charged in the card's currency.
	if strings.Contains(id, "CARD_TRANSACTION") && reference == "" && direction == "OUT" {
		reference = fmt.Sprintf("Card transaction of %s (%s)",
			field(wiseColTargetAmount), field(wiseColTargetCurrency))
	}
	if reference == "" && direction == "NEUTRAL" {
		reference = fmt.Sprintf("Currency exchange from %s to %s at exchange rate %s",
			record.SourceCurrency, record.TargetCurrency, field(wiseColExchangeRate))
	}
	record.Purpose = reference
	record.ExternalID = NormalizeRecordID(id)

	createdOn, err := time.Parse(wiseDateLayout, field(wiseColCreatedOn))
	if err != nil {
		return nil, fmt.Errorf("record %s: invalid %q value %q: %w", id, wiseColCreatedOn, field(wiseColCreatedOn), err)
	}
	finishedOn, err := time.Parse(wiseDateLayout, field(wiseColFinishedOn))
	if err != nil {
		return nil, fmt.Errorf("record %s: invalid %q value %q: %w", id, wiseColFinishedOn, field(wiseColFinishedOn), err)
	}
	if createdOn.After(finishedOn) {
		p.logger.Warn("Record has created date after finished date",
			"record_id", record.ExternalID,
			"created_on", field(wiseColCreatedOn),
			"finished_on", field(wiseColFinishedOn))
	}
	record.EntryDate = createdOn
	record.ValueDate = finishedOn

	return &record, nil
}

func parseWiseAmount(value, column, recordID string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("record %s: invalid amount %q in column %q", recordID, value, column)
	}
	return amount, nil
}
