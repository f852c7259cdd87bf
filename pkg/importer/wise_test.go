package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const wiseHeader = "ID,Status,Direction,Source currency,Target currency,Source name,Target name," +
	"Source amount (after fees),Target amount (after fees),Source fee amount,Exchange rate,Reference,Created on,Finished on"

func parseWise(t *testing.T, rows ...string) []StatementRecord {
	t.Helper()
	input := strings.Join(append([]string{wiseHeader}, rows...), "\n")
	records, err := NewWiseParser(nil).Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return records
}

func TestWiseParseIncoming(t *testing.T) {
	records := parseWise(t,
		`TRANSFER-111,COMPLETED,IN,USD,EUR,Acme GmbH,Own account,1100.00,1000.00,0.00,0.90909,Invoice 2026-07,2026-07-01 08:00:00,2026-07-01 08:00:05`)

	if len(records) != 1 {
		t.Fatalf("got %d records, expected 1", len(records))
	}
	r := records[0]
	if r.ExternalID != "TRANSFER-111" {
		t.Errorf("ExternalID = %q, expected TRANSFER-111", r.ExternalID)
	}
	if r.Currency != "EUR" {
		t.Errorf("Currency = %q, expected target currency EUR", r.Currency)
	}
	if !r.Amount.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("Amount = %s, expected 1000.00", r.Amount)
	}
	if r.Payee != "Acme GmbH" {
		t.Errorf("Payee = %q, expected the source name", r.Payee)
	}
	if r.Purpose != "Invoice 2026-07" {
		t.Errorf("Purpose = %q, expected the reference", r.Purpose)
	}
	if got := r.ValueDate.Format("2006-01-02 15:04:05"); got != "2026-07-01 08:00:05" {
		t.Errorf("ValueDate = %q, expected the finished timestamp", got)
	}
	if got := r.EntryDate.Format("2006-01-02 15:04:05"); got != "2026-07-01 08:00:00" {
		t.Errorf("EntryDate = %q, expected the created timestamp", got)
	}
	if r.Account != "" {
		t.Errorf("Account = %q, expected empty for Wise rows", r.Account)
	}
}

func TestWiseParseOutgoingAddsFee(t *testing.T) {
	records := parseWise(t,
		`TRANSFER-222,COMPLETED,OUT,EUR,EUR,Own account,Hetzner Online GmbH,119.00,119.00,0.62,1.0,R0012345678,2026-07-02 10:00:00,2026-07-02 10:00:01`)

	r := records[0]
	// Outgoing amount is source amount plus fee, negated.
	if !r.Amount.Equal(decimal.RequireFromString("-119.62")) {
		t.Errorf("Amount = %s, expected -119.62", r.Amount)
	}
	if r.Currency != "EUR" {
		t.Errorf("Currency = %q, expected source currency EUR", r.Currency)
	}
	if r.Payee != "Hetzner Online GmbH" {
		t.Errorf("Payee = %q, expected the target name", r.Payee)
	}
}

func TestWiseParseNeutral(t *testing.T) {
	records := parseWise(t,
		`BALANCE-333,COMPLETED,NEUTRAL,EUR,USD,Own account,Own account,90.91,100.00,0.00,1.1,,2026-07-03 09:00:00,2026-07-03 09:00:02`)

	r := records[0]
	if !r.Neutral {
		t.Fatal("expected a neutral record")
	}
	if r.SourceCurrency != "EUR" || r.TargetCurrency != "USD" {
		t.Errorf("currency pair = %s->%s, expected EUR->USD", r.SourceCurrency, r.TargetCurrency)
	}
	if r.Currency != "USD" {
		t.Errorf("Currency = %q, expected the target currency", r.Currency)
	}
	if !r.Amount.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("Amount = %s, expected 100.00", r.Amount)
	}
	want := "Currency exchange from EUR to USD at exchange rate 1.1"
	if r.Purpose != want {
		t.Errorf("Purpose = %q, expected %q", r.Purpose, want)
	}
}

func TestWiseParseSkipsRefundedAndCancelled(t *testing.T) {
	records := parseWise(t,
		`TRANSFER-444,REFUNDED,OUT,EUR,EUR,Own account,Shop,10.00,10.00,0.00,1.0,Order,2026-07-04 09:00:00,2026-07-04 09:00:01`,
		`TRANSFER-445,CANCELLED,OUT,EUR,EUR,Own account,Shop,10.00,10.00,0.00,1.0,Order,2026-07-04 09:00:00,2026-07-04 09:00:01`,
		`TRANSFER-446,COMPLETED,OUT,EUR,EUR,Own account,Shop,10.00,10.00,0.00,1.0,Order,2026-07-04 09:00:00,2026-07-04 09:00:01`)

	if len(records) != 1 {
		t.Fatalf("got %d records, expected only the completed one", len(records))
	}
	if records[0].ExternalID != "TRANSFER-446" {
		t.Errorf("ExternalID = %q, expected TRANSFER-446", records[0].ExternalID)
	}
}

func TestWiseParseCardTransaction(t *testing.T) {
	records := parseWise(t,
		`CARD_TRANSACTION-555,COMPLETED,OUT,EUR,USD,Own account,Coffee Shop,10.82,12.34,0.00,1.14,,2026-07-05 09:00:00,2026-07-05 09:00:01`)

	r := records[0]
	// The record type is aliased back to the old API's name.
	if r.ExternalID != "CARD-555" {
		t.Errorf("ExternalID = %q, expected CARD-555", r.ExternalID)
	}
	want := "Card transaction of 12.34 (USD)"
	if r.Purpose != want {
		t.Errorf("Purpose = %q, expected %q", r.Purpose, want)
	}
}

func TestWiseParseUnknownStatus(t *testing.T) {
	input := wiseHeader + "\n" +
		`TRANSFER-666,PENDING,OUT,EUR,EUR,Own account,Shop,10.00,10.00,0.00,1.0,Order,2026-07-06 09:00:00,2026-07-06 09:00:01`
	_, err := NewWiseParser(nil).Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestWiseParseUnknownDirection(t *testing.T) {
	input := wiseHeader + "\n" +
		`TRANSFER-667,COMPLETED,SIDEWAYS,EUR,EUR,Own account,Shop,10.00,10.00,0.00,1.0,Order,2026-07-06 09:00:00,2026-07-06 09:00:01`
	_, err := NewWiseParser(nil).Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestWiseParseMissingColumn(t *testing.T) {
	input := "ID,Status,Direction\nTRANSFER-1,COMPLETED,IN"
	_, err := NewWiseParser(nil).Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "missing column") {
		t.Errorf("error = %v, expected a missing column message", err)
	}
}

func TestWiseParseEmptyInput(t *testing.T) {
	records, err := NewWiseParser(nil).Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, expected none", len(records))
	}
}

func TestNormalizeRecordID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CARD_TRANSACTION-123", "CARD-123"},
		{"DIRECT_DEBIT_TRANSACTION-9", "DIRECT_DEBIT-9"},
		{"TRANSFER-1", "TRANSFER-1"},
	}

	for _, tt := range tests {
		if got := NormalizeRecordID(tt.input); got != tt.want {
			t.Errorf("NormalizeRecordID(%q) = %q, expected %q", tt.input, got, tt.want)
		}
	}
}
