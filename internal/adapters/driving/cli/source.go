package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourceMetadata bool

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Inspect and manage stored sources",
	Long:  `Show, cite, remove or re-embed stored sources.`,
}

var sourceShowCmd = &cobra.Command{
	Use:   "show [source]",
	Short: "Show a stored source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceShow,
}

var sourceCitationCmd = &cobra.Command{
	Use:   "citation [sources...]",
	Short: "Print citations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSourceCitation,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "rm [sources...]",
	Short: "Remove sources from the database",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSourceRemove,
}

var sourceReembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Recompute every embedding",
	Long: `Recomputes the embedding of every stored source with the configured
model. Run this after changing embedding.model.`,
	Args: cobra.NoArgs,
	RunE: runSourceReembed,
}

func init() {
	sourceShowCmd.Flags().BoolVar(&sourceMetadata, "metadata", false, "print the stored metadata as JSON")

	sourceCmd.AddCommand(sourceShowCmd)
	sourceCmd.AddCommand(sourceCitationCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceReembedCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceShow(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	doc, err := ingestService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get source: %w", err)
	}

	cmd.Println(headerStyle.Render(oneLine(doc.Title())))
	cmd.Printf("Source: %s\n", sourceStyle.Render(doc.SourceID))
	if c := doc.Citation(); c != "" {
		cmd.Printf("Citation: %s\n", c)
	}
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("Added: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Println()
	cmd.Println(doc.Text)

	if sourceMetadata {
		data, err := json.MarshalIndent(doc.Metadata, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		cmd.Println()
		cmd.Println(string(data))
	}
	return nil
}

func runSourceCitation(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	for _, id := range args {
		doc, err := ingestService.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get source: %w", err)
		}
		citation := doc.Citation()
		if citation == "" {
			citation = doc.Title()
		}
		cmd.Println(citation)
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if err := ingestService.Remove(cmd.Context(), args); err != nil {
		return fmt.Errorf("failed to remove: %w", err)
	}
	cmd.Printf("Removed %d source(s)\n", len(args))
	return nil
}

func runSourceReembed(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	n, err := ingestService.Reembed(cmd.Context())
	if err != nil {
		return fmt.Errorf("re-embedding failed after %d source(s): %w", n, err)
	}
	cmd.Printf("Re-embedded %d source(s)\n", n)
	return nil
}
