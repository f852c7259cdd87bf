package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/config"
	"github.com/sevsync-dev/sevsync/pkg/dedup"
	"github.com/sevsync-dev/sevsync/pkg/importer"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

var (
	importFormat  string
	importAccount string
	importDryRun  bool
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import <statement-file>",
	Short: "Import a bank statement as sevDesk transactions",
	Long: `Import a bank statement export into sevDesk check accounts.

This command:
1. Parses the statement (Wise CSV or OFX)
2. Routes each record to a check account via the account mapping
3. Skips records already imported in a previous run
4. Creates the remaining records as transactions in sevDesk

Example:
  sevsync import statement.csv --format wise
  sevsync import statement.ofx --format ofx
  sevsync import statement.csv --format wise --dry-run`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "wise", "Statement format: wise or ofx")
	importCmd.Flags().StringVar(&importAccount, "account", "", "Force all records onto this mapped account")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Print the would-be transactions without creating anything")
}

func runImport(cmd *cobra.Command, args []string) {
	statementPath := args[0]
	slog.Info("Starting import", "file", statementPath, "format", importFormat, "dry_run", importDryRun)

	cfg := loadConfig()
	paths := newPaths(cfg)
	client := newAPIClient(cfg)
	resolver := sevdesk.NewResolver(client)

	mapping, err := config.LoadAccountMapping(paths.GetAccountMappingPath())
	exitOnError(err, "failed to load account mapping")

	ledger, err := dedup.Load(paths.GetLedgerPath())
	exitOnError(err, "failed to load import ledger")

	var parser importer.Parser
	var accounts importer.CheckAccountResolver
	switch importFormat {
	case "wise":
		parser = importer.NewWiseParser(nil)
		accounts = importer.NewWiseCheckAccounts(resolver)
	case "ofx":
		parser = importer.NewOFXParser(nil)
		accounts = importer.NewIBANCheckAccounts(resolver)
	default:
		exitOnError(fmt.Errorf("must be wise or ofx"), fmt.Sprintf("unsupported format %q", importFormat))
	}

	file, err := os.Open(statementPath)
	exitOnError(err, "failed to open statement file")
	defer file.Close()

	records, err := parser.Parse(file)
	exitOnError(err, "failed to parse statement")
	slog.Info("Parsed statement", "records", len(records))

	if importAccount != "" {
		for i := range records {
			records[i].Account = importAccount
		}
	}

	pipeline := importer.NewPipeline(importer.PipelineConfig{
		Ledger:   ledger,
		Mapping:  mapping,
		Creator:  client,
		Accounts: accounts,
		DryRun:   importDryRun,
	})

	stats, err := pipeline.Run(cmd.Context(), records)
	if stats != nil {
		printImportStats(stats)
	}
	if err != nil {
		exitWithClass(err)
	}
}

func printImportStats(stats *importer.Stats) {
	fmt.Println("\n=== Import Statistics ===")
	color.New(color.FgGreen).Printf("Imported:          %d\n", stats.Imported)
	fmt.Printf("Duplicates:        %d\n", stats.Duplicates)
	fmt.Printf("Skipped currency:  %d\n", stats.SkippedCurrency)
	fmt.Printf("Skipped neutral:   %d\n", stats.SkippedNeutral)
	fmt.Printf("Total records:     %d\n", stats.Total)
	fmt.Println()
}
