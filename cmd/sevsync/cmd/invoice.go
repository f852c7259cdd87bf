package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/invoice"
)

var (
	invoiceCustomer string
	invoiceDays     int
)

// invoiceCmd groups invoice subcommands.
var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create invoices from billing reports",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create <report-file>",
	Short: "Create a draft invoice from a billing report",
	Long: `Create a draft invoice in sevDesk from a monthly billing report.

The report is a JSON array of task entries with hours, rates and costs,
as produced by the time tracking export. All tasks must share one billing
period and one target currency. The invoice is left in draft status for
review before sending.

Example:
  sevsync invoice create report-2026-07.json
  sevsync invoice create report-2026-07.json --customer "Acme GmbH" --days 14`,
	Args: cobra.ExactArgs(1),
	Run:  runInvoiceCreate,
}

func init() {
	invoiceCreateCmd.Flags().StringVar(&invoiceCustomer, "customer", "", "Bill this contact instead of the report's agency or client")
	invoiceCreateCmd.Flags().IntVar(&invoiceDays, "days", 30, "Days until payment")

	invoiceCmd.AddCommand(invoiceCreateCmd)
}

func runInvoiceCreate(cmd *cobra.Command, args []string) {
	reportPath := args[0]

	data, err := os.ReadFile(reportPath)
	exitOnError(err, fmt.Sprintf("reading report %s", reportPath))

	var tasks []invoice.Task
	err = json.Unmarshal(data, &tasks)
	exitOnError(err, fmt.Sprintf("parsing report %s", reportPath))

	cfg := loadConfig()
	client := newAPIClient(cfg)

	builder := invoice.NewBuilder(client, nil)
	inv, err := builder.CreateFromReport(cmd.Context(), tasks, invoice.Options{
		CustomerOverride: invoiceCustomer,
		DaysUntilPayment: invoiceDays,
	})
	if err != nil {
		exitWithClass(err)
	}

	color.New(color.FgGreen).Printf("Created draft invoice %d (%s, %d positions, gross %s %s)\n",
		inv.ID, inv.Header, len(inv.Positions), inv.SumGross, inv.Currency)
	fmt.Printf("You can check the invoice at https://my.sevdesk.de/fi/detail/type/RE/id/%d\n", inv.ID)
}
