package cli

import (
	"fmt"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todoc/internal/adapter/vecstore"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Preload all configured vector store groups",
	Long: `Load every store group referenced by the mode table into memory once,
reporting per-group store counts. Useful after regenerating stores and as a
startup health check: corrupt or missing files are reported here instead of
during a live turn.`,
	RunE: runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	seen := make(map[string]bool)
	var groups []string
	for _, modeGroups := range cfg.Vector.Modes {
		for _, g := range modeGroups {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	sort.Strings(groups)

	if len(groups) == 0 {
		fmt.Println("No store groups configured.")
		return nil
	}

	bar := progressbar.NewOptions(len(groups),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Warming[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	cache := vecstore.NewCache(logger)
	counts := make(map[string]int, len(groups))
	total := 0
	for _, group := range groups {
		indexes, err := cache.LoadGroup(cfg.GroupDir(group))
		if err != nil {
			logger.Warn("group load failed", zap.String("group", group), zap.Error(err))
		}
		counts[group] = len(indexes)
		total += len(indexes)
		bar.Add(1)
	}

	fmt.Printf("Loaded %d stores across %d groups:\n", total, len(groups))
	for _, group := range groups {
		fmt.Printf("  %-16s %d\n", group, counts[group])
	}
	return nil
}
