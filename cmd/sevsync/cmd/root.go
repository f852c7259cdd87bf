// Package cmd provides CLI commands for sevsync.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/booking"
	"github.com/sevsync-dev/sevsync/pkg/config"
	"github.com/sevsync-dev/sevsync/pkg/importer"
	"github.com/sevsync-dev/sevsync/pkg/pathutil"
	"github.com/sevsync-dev/sevsync/pkg/sevdesk"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sevsync",
	Short: "Sync bank statements and vouchers with sevDesk",
	Long: `sevsync keeps a sevDesk account in sync with the outside world.

It supports:
- Importing Wise CSV and OFX bank statements as transactions
- Booking, unbooking and resetting vouchers against transactions
- Creating draft invoices from monthly billing reports
- Caching ECB exchange rates in a local SQLite database

Example:
  sevsync import statement.csv --format wise
  sevsync book 17 42
  sevsync rates update`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	cc.Init(&cc.Config{
		RootCmd:  rootCmd,
		Headings: cc.HiCyan + cc.Bold + cc.Underline,
		Commands: cc.HiYellow + cc.Bold,
		Example:  cc.Italic,
		ExecName: cc.Bold,
		Flags:    cc.Bold,
	})
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(unbookCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(vouchersCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(statsCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// exitWithClass prints an error prefixed with its class name, so scripts
// wrapping this tool can branch on the failure kind, then exits non-zero.
func exitWithClass(err error) {
	class := booking.ClassName(err)
	var unknownAccount *importer.UnknownAccountError
	if errors.As(err, &unknownAccount) {
		class = "UnknownAccountError"
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", class, err)
	os.Exit(1)
}

// loadConfig loads and validates the configuration shared by all remote
// commands.
func loadConfig() *config.Config {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate(
		[]string{"sevdesk", "apiUrl"},
		[]string{"sevdesk", "token"},
	); err != nil {
		exitOnError(err, "invalid configuration")
	}

	return cfg
}

// newAPIClient builds the sevDesk API client from the configuration.
func newAPIClient(cfg *config.Config) *sevdesk.Client {
	return sevdesk.NewClient(sevdesk.ClientConfig{
		BaseURL:           cfg.SevDesk.APIURL,
		Token:             cfg.SevDesk.Token,
		Timeout:           cfg.SevDesk.Timeout(),
		RequestsPerSecond: cfg.SevDesk.RateLimit,
	})
}

// newPaths builds the path resolver for local durable state.
func newPaths(cfg *config.Config) *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		StateRoot:      cfg.State.Root,
		LedgerPath:     cfg.State.LedgerPath,
		RatesDBPath:    cfg.State.RatesDBPath,
		AccountMapping: cfg.State.AccountMapping,
	})
}
