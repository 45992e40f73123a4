package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [dirs...]",
	Short: "Index local directories",
	Long: `Adds supported files (.txt .org .md .tex .rst .html .htm .docx .bib)
under each directory and remembers the directory. With no arguments every
remembered directory is indexed again; only new files are added.`,
	RunE: runIndex,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed directories",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

var indexWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch indexed directories for new files",
	Long:  `Adds files as they are created or written until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runIndexWatch,
}

func init() {
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexWatchCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if directoryService == nil {
		return errors.New("directory service not configured")
	}

	var (
		n   int
		err error
	)
	if len(args) == 0 {
		n, err = directoryService.Reindex(cmd.Context())
	} else {
		n, err = directoryService.Index(cmd.Context(), args)
	}
	cmd.Printf("%s %d new file(s)\n", successStyle.Render("Indexed"), n)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if directoryService == nil {
		return errors.New("directory service not configured")
	}
	dirs, err := directoryService.ListDirectories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list directories: %w", err)
	}
	if len(dirs) == 0 {
		cmd.Println("No indexed directories.")
		return nil
	}
	for _, d := range dirs {
		cmd.Printf("%s %s\n", sourceStyle.Render(d.Path), mutedStyle.Render("(indexed "+d.LastUpdated+")"))
	}
	return nil
}

func runIndexWatch(cmd *cobra.Command, _ []string) error {
	if directoryService == nil {
		return errors.New("directory service not configured")
	}
	cmd.Println("Watching indexed directories. Press Ctrl+C to stop.")
	if err := directoryService.WatchDirectories(cmd.Context()); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
