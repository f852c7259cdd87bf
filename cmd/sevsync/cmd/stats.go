package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/sevsync-dev/sevsync/pkg/dedup"
)

// statsCmd reports on the local state files.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show import ledger and rate database statistics",
	Run:   runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	paths := newPaths(cfg)

	fmt.Println("=== Import Ledger ===")
	ledger, err := dedup.Load(paths.GetLedgerPath())
	exitOnError(err, "loading import ledger")

	fmt.Printf("Path:       %s\n", ledger.Path())
	fmt.Printf("Imported:   %d transactions\n", ledger.Count())
	if info, err := os.Stat(ledger.Path()); err == nil {
		age := durafmt.Parse(time.Since(info.ModTime())).LimitFirstN(2)
		fmt.Printf("Last import: %s ago\n", age)
	}

	counts := ledger.Counts()
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("  %-20s %d\n", key, counts[key])
	}

	fmt.Println()
	printRateStats(paths)
}
