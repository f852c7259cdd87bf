package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/pathutil"
	"github.com/sevsync-dev/sevsync/pkg/rates"
)

var (
	ratesDate     string
	ratesStrategy string
)

// ratesCmd groups exchange rate subcommands.
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage the local exchange rate database",
	Long: `Manage the local database of ECB euro reference rates.

Rates are stored per calendar day as EUR-based quotes. Cross rates between
two non-euro currencies are derived on the fly. Weekends and holidays have
no quotes; the lookup strategy decides which neighbouring day fills the gap.

Example:
  sevsync rates update
  sevsync rates get USD EUR --date 2026-07-15
  sevsync rates get GBP CHF --strategy before`,
}

var ratesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Download the full rate history",
	Long: `Download the complete ECB history and (re)fill the database.

"rates update" already falls back to the full history when the database is
empty; init forces it, which backfills a database that only ever saw the
90-day feed.`,
	Run: runRatesInit,
}

var ratesUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the latest rates from the ECB",
	Run:   runRatesUpdate,
}

var ratesGetCmd = &cobra.Command{
	Use:   "get <base> <target>",
	Short: "Look up an exchange rate",
	Args:  cobra.ExactArgs(2),
	Run:   runRatesGet,
}

var ratesCurrenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List available currencies",
	Run:   runRatesCurrencies,
}

var ratesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rate database statistics",
	Run:   runRatesStats,
}

func init() {
	ratesGetCmd.Flags().StringVar(&ratesDate, "date", "latest", "Rate date (YYYY-MM-DD or \"latest\")")
	ratesGetCmd.Flags().StringVar(&ratesStrategy, "strategy", "closest", "Gap strategy: before, after or closest")

	ratesCmd.AddCommand(ratesInitCmd)
	ratesCmd.AddCommand(ratesUpdateCmd)
	ratesCmd.AddCommand(ratesGetCmd)
	ratesCmd.AddCommand(ratesCurrenciesCmd)
	ratesCmd.AddCommand(ratesStatsCmd)
}

func openRatesStore() *rates.Store {
	cfg := loadConfig()
	paths := newPaths(cfg)

	store, err := rates.Open(paths.GetRatesDBPath())
	exitOnError(err, "opening rate database")
	return store
}

func runRatesInit(cmd *cobra.Command, args []string) {
	store := openRatesStore()
	defer store.Close()

	client := rates.NewECBClient(nil, nil)

	fmt.Println("Downloading the full ECB history, this takes a moment...")
	days, err := client.FetchDays(cmd.Context(), rates.HistoricalURL)
	exitOnError(err, "downloading rate history")

	imported, latest, err := store.ImportDays(days, "")
	exitOnError(err, "importing rate history")

	color.New(color.FgGreen).Printf("Imported %d rates across %d days, latest rate date %s\n",
		imported, len(days), latest)
}

func runRatesUpdate(cmd *cobra.Command, args []string) {
	store := openRatesStore()
	defer store.Close()

	client := rates.NewECBClient(nil, nil)

	imported, latest, err := rates.Sync(cmd.Context(), store, client)
	exitOnError(err, "syncing rates")

	if imported == 0 {
		fmt.Printf("Already up to date (latest rate date %s)\n", latest)
		return
	}
	color.New(color.FgGreen).Printf("Imported %d rates, latest rate date %s\n", imported, latest)
}

func runRatesGet(cmd *cobra.Command, args []string) {
	base, target := args[0], args[1]

	strategy, err := rates.ParseStrategy(ratesStrategy)
	exitOnError(err, "invalid strategy")

	store := openRatesStore()
	defer store.Close()

	date, rate, err := store.GetRate(base, target, ratesDate, strategy)
	exitOnError(err, fmt.Sprintf("looking up %s/%s", base, target))

	fmt.Printf("1 %s = %s %s (as of %s)\n", base, rate, target, date)
}

func runRatesCurrencies(cmd *cobra.Command, args []string) {
	store := openRatesStore()
	defer store.Close()

	currencies, err := store.ListCurrencies()
	exitOnError(err, "listing currencies")

	for _, currency := range currencies {
		fmt.Println(currency)
	}
}

func runRatesStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	printRateStats(newPaths(cfg))
}

// printRateStats renders the rate database summary, shared with "sevsync stats".
func printRateStats(paths *pathutil.PathResolver) {
	fmt.Println("=== Rate Database ===")
	if !paths.FileExists(paths.GetRatesDBPath()) {
		fmt.Println("Not initialized, run 'sevsync rates update' first")
		return
	}

	store, err := rates.Open(paths.GetRatesDBPath())
	exitOnError(err, "opening rate database")
	defer store.Close()

	stats, err := store.GetStats()
	exitOnError(err, "reading rate statistics")

	fmt.Printf("Path:       %s\n", paths.GetRatesDBPath())
	fmt.Printf("Currencies: %d\n", stats.CurrencyCount)
	fmt.Printf("Rates:      %d\n", stats.RateCount)
	if stats.LastUpdated != "" {
		fmt.Printf("Updated:    %s (%s)\n", stats.LastUpdated, formatAge(stats.LastUpdated))
	}
	if stats.MinDate != "" {
		fmt.Printf("Covers:     %s to %s\n", stats.MinDate, stats.MaxDate)
	}
}

// formatAge renders the time since an ISO date as a short human duration.
func formatAge(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "unknown"
	}
	return durafmt.Parse(time.Since(parsed)).LimitFirstN(2).String() + " ago"
}
