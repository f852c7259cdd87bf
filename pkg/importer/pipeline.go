package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sevsync-dev/sevsync/pkg/config"
	"github.com/sevsync-dev/sevsync/pkg/dedup"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

// TransactionCreator is the remote capability the pipeline needs.
// *sevdesk.Client satisfies it.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, txn sevdesk.Transaction) (*sevdesk.Transaction, error)
}

// CheckAccountResolver resolves the remote check account that should receive
// a statement record.
type CheckAccountResolver interface {
	ResolveCheckAccount(ctx context.Context, currency, account string) (*sevdesk.CheckAccount, error)
}

// Stats counts the outcomes of one import run.
type Stats struct {
	Total           int
	Imported        int
	Duplicates      int
	SkippedCurrency int
	SkippedNeutral  int
}

// PipelineConfig holds the collaborators of an import pipeline.
type PipelineConfig struct {
	Ledger   *dedup.Ledger
	Mapping  *config.AccountMapping
	Creator  TransactionCreator
	Accounts CheckAccountResolver
	Logger   *slog.Logger
	// Out receives the would-be transactions in dry-run mode. Defaults to stdout.
	Out    io.Writer
	DryRun bool
}

// Pipeline imports statement records: it routes each record to an account,
// filters ignored currencies and disabled neutral pairs, consults the dedup
// ledger, and creates the remaining records as remote transactions.
type Pipeline struct {
	ledger   *dedup.Ledger
	mapping  *config.AccountMapping
	creator  TransactionCreator
	accounts CheckAccountResolver
	logger   *slog.Logger
	out      io.Writer
	dryRun   bool
}

// NewPipeline creates an import pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{
		ledger:   cfg.Ledger,
		mapping:  cfg.Mapping,
		creator:  cfg.Creator,
		accounts: cfg.Accounts,
		logger:   logger,
		out:      out,
		dryRun:   cfg.DryRun,
	}
}

// Run processes records in input order. Each record is independent: skips are
// counted and the run continues, but a resolution or remote failure aborts so
// the operator can fix the cause and re-run. Records already created remotely
// are in the ledger and won't be imported again.
//
// In dry-run mode nothing is mutated, neither remotely nor in the ledger; the
// would-be transactions are printed to Out in input order.
func (p *Pipeline) Run(ctx context.Context, records []StatementRecord) (*Stats, error) {
	stats := &Stats{}
	for _, record := range records {
		stats.Total++
		if err := p.importRecord(ctx, record, stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (p *Pipeline) importRecord(ctx context.Context, record StatementRecord, stats *Stats) error {
	if record.Neutral && !p.mapping.IsNeutralAllowed(record.SourceCurrency, record.TargetCurrency) {
		p.logger.Info("Skipping neutral transaction",
			"record_id", record.ExternalID,
			"source_currency", record.SourceCurrency,
			"target_currency", record.TargetCurrency)
		stats.SkippedNeutral++
		return nil
	}
	if !record.Neutral && p.mapping.IsIgnoredCurrency(record.Currency) {
		p.logger.Info("Skipping transaction with ignored currency",
			"record_id", record.ExternalID,
			"currency", record.Currency)
		stats.SkippedCurrency++
		return nil
	}

	account := record.Account
	if account == "" {
		mapped, ok := p.mapping.AccountForCurrency(record.Currency)
		if !ok {
			return &UnknownAccountError{Currency: record.Currency}
		}
		account = mapped
	} else if !p.mapping.HasAccount(account) {
		return &UnknownAccountError{Account: account, Currency: record.Currency}
	}

	ledgerKey := config.LedgerKey(record.Currency, account)
	if !p.ledger.ShouldImport(ledgerKey, record.ExternalID) {
		p.logger.Info("Skipping already imported transaction",
			"account", ledgerKey,
			"record_id", record.ExternalID)
		stats.Duplicates++
		return nil
	}

	if p.dryRun {
		fmt.Fprintf(p.out, "id=%s currency=%s entry_date=%s, value_date=%s, amount=%s, payee_payer_name=%s, paymt_purpose=%s\n",
			record.ExternalID,
			record.Currency,
			record.EntryDate.Format(sevdesk.TransactionDate),
			record.ValueDate.Format(sevdesk.TransactionDate),
			record.Amount,
			record.Payee,
			record.Purpose)
		stats.Imported++
		return nil
	}

	checkAccount, err := p.accounts.ResolveCheckAccount(ctx, record.Currency, account)
	if err != nil {
		return err
	}

	created, err := p.creator.CreateTransaction(ctx, sevdesk.Transaction{
		CheckAccount:   sevdesk.ObjectRef{ID: checkAccount.ID, ObjectName: sevdesk.ObjectNameCheckAccount},
		ValueDate:      record.ValueDate.Format(sevdesk.TransactionDate),
		EntryDate:      record.EntryDate.Format(sevdesk.TransactionDate),
		Amount:         record.Amount,
		Status:         sevdesk.TransactionStatusCreated,
		PayeePayerName: record.Payee,
		PaymtPurpose:   record.Purpose,
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction for record %s: %w", record.ExternalID, err)
	}

	// Mark strictly after the remote creation succeeded. A crash between the
	// two re-imports one record on the next run instead of ever losing one.
	if err := p.ledger.MarkImported(ledgerKey, record.ExternalID); err != nil {
		return fmt.Errorf("transaction %d created but recording the import of %s failed: %w",
			created.ID, record.ExternalID, err)
	}

	p.logger.Info("Imported transaction",
		"transaction_id", created.ID,
		"record_id", record.ExternalID,
		"account", ledgerKey,
		"amount", record.Amount)
	stats.Imported++
	return nil
}

// WiseCheckAccounts resolves the remote check accounts of a Wise
// multi-currency account. Each balance is mirrored by a check account named
// "Wise ({currency}, {account})".
type WiseCheckAccounts struct {
	resolver *sevdesk.Resolver
}

// NewWiseCheckAccounts creates a resolver for Wise balance check accounts.
func NewWiseCheckAccounts(resolver *sevdesk.Resolver) *WiseCheckAccounts {
	return &WiseCheckAccounts{resolver: resolver}
}

// ResolveCheckAccount finds the check account mirroring the given Wise balance.
func (w *WiseCheckAccounts) ResolveCheckAccount(ctx context.Context, currency, account string) (*sevdesk.CheckAccount, error) {
	name := fmt.Sprintf("Wise (%s, %s)", currency, account)
	return w.resolver.CheckAccountByName(ctx, name)
}

// IBANCheckAccounts resolves check accounts by the IBAN or account number a
// bank statement names.
type IBANCheckAccounts struct {
	resolver *sevdesk.Resolver
}

// NewIBANCheckAccounts creates a resolver matching check accounts on IBAN.
func NewIBANCheckAccounts(resolver *sevdesk.Resolver) *IBANCheckAccounts {
	return &IBANCheckAccounts{resolver: resolver}
}

// ResolveCheckAccount finds the check account with the given IBAN.
func (i *IBANCheckAccounts) ResolveCheckAccount(ctx context.Context, currency, account string) (*sevdesk.CheckAccount, error) {
	return i.resolver.CheckAccountByIBAN(ctx, account)
}
