package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todoc/internal/adapter/embedding"
	"todoc/internal/adapter/vecstore"
	"todoc/internal/usecase"
)

var (
	searchQuery string
	searchMode  string
	searchTopK  int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the vector stores directly",
	Long: `Run retrieval against the mode's store groups without the agent loop,
to inspect which citations a question would ground on.

Examples:
  todoc search -q "fever over 38 degrees" --mode doctor
  todoc search -q "iron rich foods" --mode nutrition --top-k 8 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "conversation mode (default from config)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "results per group (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

type groupSearchResult struct {
	Group     string   `json:"group"`
	Citations []string `json:"citations"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	embedder, err := embedding.NewOpenAIEmbedder(cfg.OpenAI)
	if err != nil {
		return fmt.Errorf("embedding service unavailable: %w", err)
	}
	retriever := vecstore.NewRetriever(embedder, logger)
	cache := vecstore.NewCache(logger)
	router := usecase.NewRouter(cfg.Vector.Modes, cfg.Agent.DefaultMode)

	var results []groupSearchResult
	for _, group := range router.Resolve(searchMode) {
		indexes, err := cache.LoadGroup(cfg.GroupDir(group))
		if err != nil {
			logger.Warn("group load failed", zap.String("group", group), zap.Error(err))
			continue
		}

		knobs := cfg.Retrieve.ForGroup(group)
		topK := knobs.TopK
		if searchTopK > 0 {
			topK = searchTopK
		}

		out, err := retriever.Search(cmd.Context(), searchQuery, indexes, topK, knobs.ScoreThreshold)
		if err != nil {
			return fmt.Errorf("search failed for group %s: %w", group, err)
		}

		var citations []string
		if out != "" {
			citations = strings.Split(out, "\n")
		}
		results = append(results, groupSearchResult{Group: group, Citations: citations})
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	total := 0
	for _, r := range results {
		total += len(r.Citations)
	}
	if total == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", total, searchQuery)
	for _, r := range results {
		if len(r.Citations) == 0 {
			continue
		}
		fmt.Printf("--- %s ---\n", r.Group)
		for _, c := range r.Citations {
			fmt.Println(c)
		}
		fmt.Println()
	}
	return nil
}
