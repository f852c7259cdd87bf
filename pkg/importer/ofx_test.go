package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const ofxFixture = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260801120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>12030000
<ACCTID>DE02120300000000202051
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260701000000
<DTEND>20260731000000
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260715120000
<TRNAMT>-119.00
<FITID>2026071501
<NAME>Hetzner Online GmbH
<MEMO>Invoice R0012345678
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260716090000
<TRNAMT>2500.00
<FITID>2026071601
<NAME>Acme GmbH
<MEMO>Payment 2026-07
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>2381.00
<DTASOF>20260731000000
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestOFXParse(t *testing.T) {
	records, err := NewOFXParser(nil).Parse(strings.NewReader(ofxFixture))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, expected 2", len(records))
	}

	debit := records[0]
	if debit.ExternalID != "2026071501" {
		t.Errorf("ExternalID = %q, expected the FITID", debit.ExternalID)
	}
	if debit.Account != "DE02120300000000202051" {
		t.Errorf("Account = %q, expected the statement IBAN", debit.Account)
	}
	if debit.Currency != "EUR" {
		t.Errorf("Currency = %q, expected EUR", debit.Currency)
	}
	if !debit.Amount.Equal(decimal.RequireFromString("-119.00")) {
		t.Errorf("Amount = %s, expected -119.00", debit.Amount)
	}
	if debit.Payee != "Hetzner Online GmbH" {
		t.Errorf("Payee = %q, expected Hetzner Online GmbH", debit.Payee)
	}
	if debit.Purpose != "Invoice R0012345678" {
		t.Errorf("Purpose = %q, expected the memo", debit.Purpose)
	}
	if got := debit.ValueDate.Format("2006-01-02"); got != "2026-07-15" {
		t.Errorf("ValueDate = %q, expected 2026-07-15", got)
	}
	// Without a user date the entry date equals the posted date.
	if !debit.EntryDate.Equal(debit.ValueDate) {
		t.Errorf("EntryDate = %v, expected the posted date", debit.EntryDate)
	}

	credit := records[1]
	if !credit.Amount.Equal(decimal.RequireFromString("2500.00")) {
		t.Errorf("Amount = %s, expected 2500.00", credit.Amount)
	}
	if credit.Payee != "Acme GmbH" {
		t.Errorf("Payee = %q, expected Acme GmbH", credit.Payee)
	}
}

func TestOFXParseGarbage(t *testing.T) {
	_, err := NewOFXParser(nil).Parse(strings.NewReader("this is not an OFX file"))
	if err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestOFXParseNoBankStatement(t *testing.T) {
	// Signon only, no bank messages.
	input := `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260801120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
</OFX>
`
	_, err := NewOFXParser(nil).Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error when no bank statement is present")
	}
	if !strings.Contains(err.Error(), "no bank statement") {
		t.Errorf("error = %v, expected a no-bank-statement message", err)
	}
}
