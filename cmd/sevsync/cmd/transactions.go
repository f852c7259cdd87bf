package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

var (
	txnListAccount int64
	txnListStatus  string
	txnListStart   string
	txnListEnd     string

	txnAccount int64
	txnAmount  string
	txnDate    string
	txnPayee   string
	txnPurpose string
)

// transactionsCmd groups check account transaction subcommands.
var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List, inspect and edit check account transactions",
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Run:   runTransactionsList,
}

var transactionsGetCmd = &cobra.Command{
	Use:   "get <transaction-id>",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	Run:   runTransactionsGet,
}

var transactionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a transaction manually",
	Long: `Create a check account transaction by hand, e.g. for a statement the
importer does not cover.

Example:
  sevsync transactions create --account-id 3 --amount -119.00 --date 2026-08-01 --payee "Hetzner"`,
	Run: runTransactionsCreate,
}

var transactionsEnshrineCmd = &cobra.Command{
	Use:   "enshrine <transaction-id>",
	Short: "Permanently freeze a transaction",
	Args:  cobra.ExactArgs(1),
	Run:   runTransactionsEnshrine,
}

func init() {
	transactionsListCmd.Flags().Int64Var(&txnListAccount, "account-id", 0, "Filter by check account ID")
	transactionsListCmd.Flags().StringVar(&txnListStatus, "status", "", "Filter by status (created, linked, private, auto_booked, booked)")
	transactionsListCmd.Flags().StringVar(&txnListStart, "start", "", "Earliest value date (YYYY-MM-DD)")
	transactionsListCmd.Flags().StringVar(&txnListEnd, "end", "", "Latest value date (YYYY-MM-DD)")

	transactionsCreateCmd.Flags().Int64Var(&txnAccount, "account-id", 0, "Check account ID (required)")
	transactionsCreateCmd.Flags().StringVar(&txnAmount, "amount", "", "Amount, negative for outgoing (required)")
	transactionsCreateCmd.Flags().StringVar(&txnDate, "date", "", "Value date (YYYY-MM-DD) (required)")
	transactionsCreateCmd.Flags().StringVar(&txnPayee, "payee", "", "Payee or payer name")
	transactionsCreateCmd.Flags().StringVar(&txnPurpose, "purpose", "", "Payment purpose")
	transactionsCreateCmd.MarkFlagRequired("account-id")
	transactionsCreateCmd.MarkFlagRequired("amount")
	transactionsCreateCmd.MarkFlagRequired("date")

	transactionsCmd.AddCommand(transactionsListCmd)
	transactionsCmd.AddCommand(transactionsGetCmd)
	transactionsCmd.AddCommand(transactionsCreateCmd)
	transactionsCmd.AddCommand(transactionsEnshrineCmd)
}

func runTransactionsList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	client := newAPIClient(cfg)

	opts := &sevdesk.ListTransactionsOptions{
		CheckAccountID: txnListAccount,
		StartDate:      txnListStart,
		EndDate:        txnListEnd,
	}
	if txnListStatus != "" {
		status, err := sevdesk.ParseTransactionStatus(txnListStatus)
		exitOnError(err, "invalid status filter")
		opts.Status = status
	}

	txns, err := client.FetchAllTransactions(cmd.Context(), opts)
	if err != nil {
		exitWithClass(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tACCOUNT\tSTATUS\tVALUE DATE\tAMOUNT\tPAYEE\tPURPOSE")
	for _, txn := range txns {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID, txn.CheckAccount.ID, txn.Status, txn.ValueDate,
			txn.Amount, txn.PayeePayerName, txn.PaymtPurpose)
	}
	w.Flush()
}

func runTransactionsGet(cmd *cobra.Command, args []string) {
	txnID := parseIDArg(args[0], "transaction ID")

	cfg := loadConfig()
	client := newAPIClient(cfg)

	txn, err := client.GetTransaction(cmd.Context(), txnID)
	if err != nil {
		exitWithClass(err)
	}

	fmt.Printf("Transaction %d\n", txn.ID)
	fmt.Printf("  Account:    %d\n", txn.CheckAccount.ID)
	fmt.Printf("  Status:     %s\n", txn.Status)
	fmt.Printf("  Value date: %s\n", txn.ValueDate)
	fmt.Printf("  Entry date: %s\n", txn.EntryDate)
	fmt.Printf("  Amount:     %s\n", txn.Amount)
	fmt.Printf("  Payee:      %s\n", txn.PayeePayerName)
	fmt.Printf("  Purpose:    %s\n", txn.PaymtPurpose)
	fmt.Printf("  Enshrined:  %t\n", txn.Enshrined)
	if txn.Target != nil {
		fmt.Printf("  Linked to:  %s %d (%s)\n", txn.Target.ObjectName, txn.Target.ID, txn.LinkedAmount)
	}
}

func runTransactionsCreate(cmd *cobra.Command, args []string) {
	amount, err := decimal.NewFromString(txnAmount)
	exitOnError(err, fmt.Sprintf("invalid amount %q", txnAmount))

	valueDate, err := time.Parse("2006-01-02", txnDate)
	exitOnError(err, fmt.Sprintf("invalid date %q", txnDate))

	cfg := loadConfig()
	client := newAPIClient(cfg)

	txn := sevdesk.Transaction{
		CheckAccount:   sevdesk.ObjectRef{ID: txnAccount, ObjectName: sevdesk.ObjectNameCheckAccount},
		ValueDate:      valueDate.Format(sevdesk.TransactionDate),
		Amount:         amount,
		Status:         sevdesk.TransactionStatusCreated,
		PayeePayerName: txnPayee,
		PaymtPurpose:   txnPurpose,
	}

	created, err := client.CreateTransaction(cmd.Context(), txn)
	if err != nil {
		exitWithClass(err)
	}

	fmt.Printf("Created transaction %d (%s on account %d)\n",
		created.ID, created.Amount, created.CheckAccount.ID)
}

func runTransactionsEnshrine(cmd *cobra.Command, args []string) {
	txnID := parseIDArg(args[0], "transaction ID")

	cfg := loadConfig()
	client := newAPIClient(cfg)

	txn, err := client.EnshrineTransaction(cmd.Context(), txnID)
	if err != nil {
		exitWithClass(err)
	}

	fmt.Printf("Enshrined transaction %d\n", txn.ID)
}
