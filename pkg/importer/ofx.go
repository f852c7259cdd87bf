package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// OFXParser parses OFX/QFX bank statements. Unlike Wise exports, an OFX
// statement names its account and currency itself; the pipeline only verifies
// them against the account mapping.
type OFXParser struct {
	logger *slog.Logger
}

// NewOFXParser creates an OFX statement parser. A nil logger falls back to
// slog's default.
func NewOFXParser(logger *slog.Logger) *OFXParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &OFXParser{logger: logger}
}

// Parse reads an OFX download and returns its bank transactions in statement
// order.
func (p *OFXParser) Parse(r io.Reader) ([]StatementRecord, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX statement: %w", err)
	}
	if len(resp.Bank) == 0 {
		return nil, fmt.Errorf("no bank statement found in OFX file")
	}

	var records []StatementRecord
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}

		account := stmt.BankAcctFrom.AcctID.String()
		if account == "" {
			return nil, fmt.Errorf("missing account ID in OFX statement")
		}
		currency := stmt.CurDef.String()
		if stmt.BankTranList == nil {
			p.logger.Warn("OFX statement has no transaction list", "account", account)
			continue
		}

		digits := sevdesk.CurrencyDigits(currency)
		for _, txn := range stmt.BankTranList.Transactions {
			record, err := p.parseTransaction(txn, account, currency, digits)
			if err != nil {
				return nil, err
			}
			records = append(records, *record)
		}
	}
	return records, nil
}

func (p *OFXParser) parseTransaction(txn ofxgo.Transaction, account, currency string, digits int32) (*StatementRecord, error) {
	id := txn.FiTID.String()
	if id == "" {
		return nil, fmt.Errorf("OFX transaction in account %s is missing its FITID", account)
	}

	posted := txn.DtPosted.Time
	if posted.IsZero() {
		return nil, fmt.Errorf("OFX transaction %s is missing its posted date", id)
	}
	entry := posted
	if txn.DtUser != nil && !txn.DtUser.Time.IsZero() {
		entry = txn.DtUser.Time
	}

	payee := txn.Name.String()
	if payee == "" && txn.Payee != nil {
		payee = txn.Payee.Name.String()
	}

	return &StatementRecord{
		ExternalID: id,
		Account:    account,
		Currency:   currency,
		Amount:     decimal.NewFromBigRat(&txn.TrnAmt.Rat, digits),
		Payee:      payee,
		Purpose:    strings.TrimSpace(txn.Memo.String()),
		EntryDate:  entry,
		ValueDate:  posted,
	}, nil
}
