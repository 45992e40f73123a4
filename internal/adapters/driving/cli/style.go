package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/litdb/litdb/internal/core/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// printResults writes a numbered result list.
func printResults(cmd *cobra.Command, results []domain.SearchResult, scoreLabel string) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	for i := range results {
		r := results[i]
		cmd.Printf("[%d] %s %s\n", i+1,
			titleStyle.Render(oneLine(r.Document.Title())),
			mutedStyle.Render(fmt.Sprintf("(%s %.3f)", scoreLabel, r.Score)))
		cmd.Printf("    %s\n", sourceStyle.Render(r.Document.SourceID))
		switch {
		case r.Snippet != "":
			cmd.Printf("    %s\n", oneLine(r.Snippet))
		case r.Document.Citation() != "":
			cmd.Printf("    %s\n", oneLine(r.Document.Citation()))
		}
		cmd.Println()
	}
}

// printDocuments writes a document list without scores.
func printDocuments(cmd *cobra.Command, docs []domain.Document) {
	for i := range docs {
		cmd.Printf("%s\n", titleStyle.Render(oneLine(docs[i].Title())))
		cmd.Printf("  %s\n", sourceStyle.Render(docs[i].SourceID))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
