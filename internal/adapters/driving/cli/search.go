package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litdb/litdb/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchRerank   bool
	searchIterate  bool
	searchMaxSteps int
	hybridText     string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Vector search the database",
	Long: `Embeds the query and returns the closest documents by cosine distance.

Use --rerank to re-order the candidates with the configured cross-encoder,
and --iterate to expand the results through the citation graph and search
again until the results stop changing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var fulltextCmd = &cobra.Command{
	Use:   "fulltext [query]",
	Short: "Full-text search the database",
	Long: `Runs a SQLite FTS5 query ranked by BM25.
FTS5 syntax such as AND, OR, NOT and "phrases" is supported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFulltext,
}

var similarCmd = &cobra.Command{
	Use:   "similar [source]",
	Short: "Find documents similar to a stored source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

var hybridCmd = &cobra.Command{
	Use:   "hybrid [query]",
	Short: "Hybrid vector and full-text search",
	Long: `Runs a vector search and a full-text search and fuses the rankings.
The full-text query defaults to the vector query; set it with --text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHybrid,
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, fulltextCmd, similarCmd, hybridCmd} {
		c.Flags().IntVarP(&searchLimit, "limit", "n", 3, "maximum number of results")
		c.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
		rootCmd.AddCommand(c)
	}
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "re-rank with the cross-encoder")
	searchCmd.Flags().BoolVar(&searchIterate, "iterate", false, "expand results and repeat until stable")
	searchCmd.Flags().IntVar(&searchMaxSteps, "max-steps", 0, "rounds for --iterate (0 = ask each round)")
	hybridCmd.Flags().StringVar(&hybridText, "text", "", "full-text query (default: the vector query)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	query := strings.Join(args, " ")

	if searchIterate {
		res, err := searchService.IterativeSearch(cmd.Context(), query, searchLimit, searchMaxSteps)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return outputSearchJSON(cmd, res.Results)
		}
		state := "stopped"
		if res.Converged {
			state = "converged"
		}
		cmd.Println(mutedStyle.Render(fmt.Sprintf("%s after %d round(s)", state, res.Rounds)))
		printResults(cmd, res.Results, "distance")
		return nil
	}

	results, err := searchService.VectorSearch(cmd.Context(), query, searchLimit, searchRerank)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	label := "distance"
	if searchRerank {
		label = "score"
	}
	return outputSearch(cmd, results, label)
}

func runFulltext(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	results, err := searchService.FulltextSearch(cmd.Context(), strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputSearch(cmd, results, "bm25")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	results, err := searchService.Similar(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputSearch(cmd, results, "distance")
}

func runHybrid(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	query := strings.Join(args, " ")
	text := hybridText
	if text == "" {
		text = query
	}
	results, err := searchService.HybridSearch(cmd.Context(), query, text, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputSearch(cmd, results, "score")
}

func outputSearch(cmd *cobra.Command, results []domain.SearchResult, label string) error {
	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	printResults(cmd, results, label)
	return nil
}

type searchResultJSON struct {
	Source   string  `json:"source"`
	Title    string  `json:"title"`
	Citation string  `json:"citation,omitempty"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		out[i] = searchResultJSON{
			Source:   results[i].Document.SourceID,
			Title:    results[i].Document.Title(),
			Citation: results[i].Document.Citation(),
			Score:    results[i].Score,
			Snippet:  results[i].Snippet,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
