package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevsync-dev/sevsync/pkg/config"
	"github.com/sevsync-dev/sevsync/pkg/dedup"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

type fakeCreator struct {
	created []sevdesk.Transaction
	// failOnPayee makes CreateTransaction fail for that payee.
	failOnPayee string
}

func (f *fakeCreator) CreateTransaction(ctx context.Context, txn sevdesk.Transaction) (*sevdesk.Transaction, error) {
	if f.failOnPayee != "" && txn.PayeePayerName == f.failOnPayee {
		return nil, errors.New("service unavailable")
	}
	f.created = append(f.created, txn)
	txn.ID = int64(len(f.created))
	return &txn, nil
}

type fakeAccounts struct {
	resolved [][2]string
}

func (f *fakeAccounts) ResolveCheckAccount(ctx context.Context, currency, account string) (*sevdesk.CheckAccount, error) {
	f.resolved = append(f.resolved, [2]string{currency, account})
	return &sevdesk.CheckAccount{ID: 3, Name: "Wise (" + currency + ", " + account + ")", Currency: currency}, nil
}

func testMapping(t *testing.T) *config.AccountMapping {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	content := `accounts:
  - account: Business
    currency: EUR
  - account: Business
    currency: USD

ignore_currencies:
  - GBP

neutral_pairs:
  - source: EUR
    target: USD
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	mapping, err := config.LoadAccountMapping(path)
	require.NoError(t, err)
	return mapping
}

func testLedger(t *testing.T) *dedup.Ledger {
	t.Helper()
	ledger, err := dedup.Load(filepath.Join(t.TempDir(), "ledger.json"))
	require.NoError(t, err)
	return ledger
}

func record(id, currency, amount, payee string) StatementRecord {
	return StatementRecord{
		ExternalID: id,
		Currency:   currency,
		Amount:     decimal.RequireFromString(amount),
		Payee:      payee,
		Purpose:    "Purpose of " + id,
		EntryDate:  time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC),
		ValueDate:  time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPipelineImports(t *testing.T) {
	creator := &fakeCreator{}
	accounts := &fakeAccounts{}
	ledger := testLedger(t)
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   ledger,
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: accounts,
	})

	stats, err := pipeline.Run(context.Background(), []StatementRecord{
		record("TRANSFER-1", "EUR", "-119.00", "Hetzner"),
		record("TRANSFER-2", "USD", "250.00", "Acme"),
	})
	require.NoError(t, err)

	assert.Equal(t, &Stats{Total: 2, Imported: 2}, stats)
	require.Len(t, creator.created, 2)

	txn := creator.created[0]
	assert.Equal(t, int64(3), txn.CheckAccount.ID)
	assert.Equal(t, sevdesk.ObjectNameCheckAccount, txn.CheckAccount.ObjectName)
	assert.Equal(t, "2026-07-01 09:00:00", txn.ValueDate)
	assert.Equal(t, "2026-07-01 08:00:00", txn.EntryDate)
	assert.Equal(t, sevdesk.TransactionStatusCreated, txn.Status)
	assert.Equal(t, "Hetzner", txn.PayeePayerName)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("-119.00")))

	// Rows are routed to the mapped account by currency.
	assert.Equal(t, [][2]string{{"EUR", "Business"}, {"USD", "Business"}}, accounts.resolved)

	// Both records are now in the ledger under their currency-qualified keys.
	assert.False(t, ledger.ShouldImport("EUR-Business", "TRANSFER-1"))
	assert.False(t, ledger.ShouldImport("USD-Business", "TRANSFER-2"))
}

func TestPipelineDeduplicates(t *testing.T) {
	creator := &fakeCreator{}
	ledger := testLedger(t)
	require.NoError(t, ledger.MarkImported("EUR-Business", "TRANSFER-1"))
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   ledger,
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: &fakeAccounts{},
	})

	stats, err := pipeline.Run(context.Background(), []StatementRecord{
		record("TRANSFER-1", "EUR", "-119.00", "Hetzner"),
		record("TRANSFER-2", "EUR", "-10.00", "Domain Corp"),
	})
	require.NoError(t, err)

	assert.Equal(t, &Stats{Total: 2, Imported: 1, Duplicates: 1}, stats)
	require.Len(t, creator.created, 1)
	assert.Equal(t, "Domain Corp", creator.created[0].PayeePayerName)
}

func TestPipelineSkipsIgnoredCurrency(t *testing.T) {
	creator := &fakeCreator{}
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   testLedger(t),
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: &fakeAccounts{},
	})

	stats, err := pipeline.Run(context.Background(), []StatementRecord{
		record("TRANSFER-1", "GBP", "-5.00", "London Shop"),
	})
	require.NoError(t, err)

	assert.Equal(t, &Stats{Total: 1, SkippedCurrency: 1}, stats)
	assert.Empty(t, creator.created)
}

func TestPipelineNeutralPairs(t *testing.T) {
	creator := &fakeCreator{}
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   testLedger(t),
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: &fakeAccounts{},
	})

	allowed := record("BALANCE-1", "USD", "100.00", "Own account")
	allowed.Neutral = true
	allowed.SourceCurrency = "EUR"
	allowed.TargetCurrency = "USD"

	disallowed := record("BALANCE-2", "EUR", "90.00", "Own account")
	disallowed.Neutral = true
	disallowed.SourceCurrency = "USD"
	disallowed.TargetCurrency = "EUR"

	stats, err := pipeline.Run(context.Background(), []StatementRecord{allowed, disallowed})
	require.NoError(t, err)

	// Only the configured EUR->USD direction is imported.
	assert.Equal(t, &Stats{Total: 2, Imported: 1, SkippedNeutral: 1}, stats)
	require.Len(t, creator.created, 1)
	assert.True(t, creator.created[0].Amount.Equal(decimal.RequireFromString("100.00")))
}

func TestPipelineUnknownCurrencyAborts(t *testing.T) {
	creator := &fakeCreator{}
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   testLedger(t),
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: &fakeAccounts{},
	})

	_, err := pipeline.Run(context.Background(), []StatementRecord{
		record("TRANSFER-1", "CHF", "-5.00", "Zurich Shop"),
	})

	var unknown *UnknownAccountError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "CHF", unknown.Currency)
	assert.Empty(t, unknown.Account)
	assert.Empty(t, creator.created)
}

func TestPipelineUnknownAccountAborts(t *testing.T) {
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   testLedger(t),
		Mapping:  testMapping(t),
		Creator:  &fakeCreator{},
		Accounts: &fakeAccounts{},
	})

	rec := record("2026071501", "EUR", "-119.00", "Hetzner")
	rec.Account = "DE99999999999999999999"

	_, err := pipeline.Run(context.Background(), []StatementRecord{rec})

	var unknown *UnknownAccountError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "DE99999999999999999999", unknown.Account)
}

func TestPipelineDryRun(t *testing.T) {
	creator := &fakeCreator{}
	ledger := testLedger(t)
	var out bytes.Buffer
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   ledger,
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: &fakeAccounts{},
		Out:      &out,
		DryRun:   true,
	})

	stats, err := pipeline.Run(context.Background(), []StatementRecord{
		record("TRANSFER-1", "EUR", "-119.00", "Hetzner"),
	})
	require.NoError(t, err)

	assert.Equal(t, &Stats{Total: 1, Imported: 1}, stats)
	// Nothing was mutated, remotely or locally.
	assert.Empty(t, creator.created)
	assert.True(t, ledger.ShouldImport("EUR-Business", "TRANSFER-1"))
	assert.Contains(t, out.String(), "id=TRANSFER-1")
	assert.Contains(t, out.String(), "amount=-119")
}

func TestPipelineRemoteFailureAborts(t *testing.T) {
	creator := &fakeCreator{failOnPayee: "Acme"}
	ledger := testLedger(t)
	pipeline := NewPipeline(PipelineConfig{
		Ledger:   ledger,
		Mapping:  testMapping(t),
		Creator:  creator,
		Accounts: &fakeAccounts{},
	})

	stats, err := pipeline.Run(context.Background(), []StatementRecord{
		record("TRANSFER-1", "EUR", "-119.00", "Hetzner"),
		record("TRANSFER-2", "EUR", "250.00", "Acme"),
		record("TRANSFER-3", "EUR", "-10.00", "Domain Corp"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRANSFER-2")
	// The first record made it through and stays imported for the re-run.
	assert.Equal(t, 1, stats.Imported)
	assert.False(t, ledger.ShouldImport("EUR-Business", "TRANSFER-1"))
	assert.True(t, ledger.ShouldImport("EUR-Business", "TRANSFER-2"))
	assert.True(t, ledger.ShouldImport("EUR-Business", "TRANSFER-3"))
}

func TestUnknownAccountErrorMessage(t *testing.T) {
	withAccount := &UnknownAccountError{Account: "123", Currency: "EUR"}
	assert.Equal(t, "unknown account 123 (currency EUR): add it to the account mapping", withAccount.Error())

	currencyOnly := &UnknownAccountError{Currency: "CHF"}
	assert.Equal(t, "no account mapped for currency CHF: add it to the account mapping or ignore the currency", currencyOnly.Error())
}
