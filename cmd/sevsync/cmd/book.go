package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/booking"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

var bookAmount string

// bookCmd represents the book command.
var bookCmd = &cobra.Command{
	Use:   "book <voucher-id> <transaction-id>",
	Short: "Book a voucher by linking a transaction to it",
	Long: `Book an unpaid voucher: link the given transaction as its payment and
mark the voucher paid.

The amount defaults to the voucher's remaining gross. Partial settlement is
not supported; an amount below the remaining gross is rejected before
anything is sent to sevDesk.

Example:
  sevsync book 17 42
  sevsync book 17 42 --amount 119.00`,
	Args: cobra.ExactArgs(2),
	Run:  runBook,
}

// unbookCmd represents the unbook command.
var unbookCmd = &cobra.Command{
	Use:   "unbook <voucher-id>",
	Short: "Revert a booked voucher to unpaid",
	Long: `Unbook a paid voucher: unlink all its payment transactions and mark it
unpaid again.

Example:
  sevsync unbook 17`,
	Args: cobra.ExactArgs(1),
	Run:  runUnbook,
}

// resetCmd represents the reset command.
var resetCmd = &cobra.Command{
	Use:   "reset <voucher-id> <draft|open>",
	Short: "Reset a voucher to draft or open",
	Long: `Reset a voucher to an earlier lifecycle stage. A paid voucher is
unbooked first.

Example:
  sevsync reset 17 draft
  sevsync reset 17 open`,
	Args: cobra.ExactArgs(2),
	Run:  runReset,
}

func init() {
	bookCmd.Flags().StringVar(&bookAmount, "amount", "", "Payment amount (defaults to the voucher's remaining gross)")
}

// parseIDArg parses a positional numeric ID.
func parseIDArg(value, name string) int64 {
	id, err := strconv.ParseInt(value, 10, 64)
	exitOnError(err, fmt.Sprintf("invalid %s %q", name, value))
	return id
}

func runBook(cmd *cobra.Command, args []string) {
	voucherID := parseIDArg(args[0], "voucher ID")
	transactionID := parseIDArg(args[1], "transaction ID")

	var amount *decimal.Decimal
	if bookAmount != "" {
		parsed, err := decimal.NewFromString(bookAmount)
		exitOnError(err, fmt.Sprintf("invalid amount %q", bookAmount))
		amount = &parsed
	}

	cfg := loadConfig()
	engine := booking.NewEngine(newAPIClient(cfg), nil)

	outcome := engine.Settle(cmd.Context(), voucherID, transactionID, amount)
	switch outcome.Kind {
	case booking.OutcomeSuccess:
		color.New(color.FgGreen).Printf("Booked voucher %d: transaction %d linked, voucher paid\n",
			voucherID, transactionID)
	case booking.OutcomeLinkedNotTransitioned:
		color.New(color.FgYellow).Printf("Transaction %d is linked, but voucher %d could not be marked paid\n",
			transactionID, voucherID)
		exitWithClass(outcome.Err)
	default:
		exitWithClass(outcome.Err)
	}
}

func runUnbook(cmd *cobra.Command, args []string) {
	voucherID := parseIDArg(args[0], "voucher ID")

	cfg := loadConfig()
	engine := booking.NewEngine(newAPIClient(cfg), nil)

	outcome := engine.Unbook(cmd.Context(), voucherID)
	switch outcome.Kind {
	case booking.OutcomeSuccess:
		color.New(color.FgGreen).Printf("Unbooked voucher %d: payments unlinked, voucher unpaid\n", voucherID)
	case booking.OutcomeLinkedNotTransitioned:
		color.New(color.FgYellow).Printf("Voucher %d is partially unbooked, re-run to finish\n", voucherID)
		exitWithClass(outcome.Err)
	default:
		exitWithClass(outcome.Err)
	}
}

func runReset(cmd *cobra.Command, args []string) {
	voucherID := parseIDArg(args[0], "voucher ID")

	var target sevdesk.VoucherStatus
	switch args[1] {
	case "draft":
		target = sevdesk.VoucherStatusDraft
	case "open", "unpaid":
		target = sevdesk.VoucherStatusUnpaid
	default:
		exitOnError(fmt.Errorf("must be draft or open"), fmt.Sprintf("invalid reset target %q", args[1]))
	}

	cfg := loadConfig()
	engine := booking.NewEngine(newAPIClient(cfg), nil)

	outcome := engine.Reset(cmd.Context(), voucherID, target)
	switch outcome.Kind {
	case booking.OutcomeSuccess:
		color.New(color.FgGreen).Printf("Reset voucher %d to %s\n", voucherID, target)
	case booking.OutcomeLinkedNotTransitioned:
		color.New(color.FgYellow).Printf("Voucher %d is partially reset, re-run to finish\n", voucherID)
		exitWithClass(outcome.Err)
	default:
		exitWithClass(outcome.Err)
	}
}
