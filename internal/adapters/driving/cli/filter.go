package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var filterDescription string

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Manage saved OpenAlex filters",
	Long: `Saved filters are OpenAlex work filters replayed on update. Each
replay only asks for works created since the filter last succeeded.`,
}

var filterAddCmd = &cobra.Command{
	Use:   "add [filter]",
	Short: "Save a filter without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterAdd,
}

var filterRemoveCmd = &cobra.Command{
	Use:     "rm [filter]",
	Aliases: []string{"remove"},
	Short:   "Delete a saved filter",
	Args:    cobra.ExactArgs(1),
	RunE:    runFilterRemove,
}

var filterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	Args:  cobra.NoArgs,
	RunE:  runFilterList,
}

var filterUpdateCmd = &cobra.Command{
	Use:   "update [filter]",
	Short: "Replay saved filters",
	Long: `Replays one filter, or every saved filter when none is given, and
adds the new works. A filter whose replay was incomplete keeps its date.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilterUpdate,
}

var filterWatchCmd = &cobra.Command{
	Use:   "watch [filter]",
	Short: "Save a filter after checking it returns results",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterWatch,
}

var filterFollowCmd = &cobra.Command{
	Use:   "follow [orcid]",
	Short: "Add an author's works and watch for new ones",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterFollow,
}

var filterCitingCmd = &cobra.Command{
	Use:   "citing [id]",
	Short: "Watch for new works citing a work",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterCiting,
}

var filterRelatedCmd = &cobra.Command{
	Use:   "related [id]",
	Short: "Watch for new works related to a work",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilterRelated,
}

func init() {
	filterAddCmd.Flags().StringVarP(&filterDescription, "description", "d", "", "filter description")
	filterWatchCmd.Flags().StringVarP(&filterDescription, "description", "d", "", "filter description")

	filterCmd.AddCommand(filterAddCmd)
	filterCmd.AddCommand(filterRemoveCmd)
	filterCmd.AddCommand(filterListCmd)
	filterCmd.AddCommand(filterUpdateCmd)
	filterCmd.AddCommand(filterWatchCmd)
	filterCmd.AddCommand(filterFollowCmd)
	filterCmd.AddCommand(filterCitingCmd)
	filterCmd.AddCommand(filterRelatedCmd)
	rootCmd.AddCommand(filterCmd)
}

func requireFilterService() error {
	if filterService == nil {
		return errors.New("filter service not configured")
	}
	return nil
}

func runFilterAdd(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	if err := filterService.AddFilter(cmd.Context(), args[0], filterDescription); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}
	cmd.Printf("Saved filter: %s\n", args[0])
	return nil
}

func runFilterRemove(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	if err := filterService.RemoveFilter(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove filter: %w", err)
	}
	cmd.Printf("Removed filter: %s\n", args[0])
	return nil
}

func runFilterList(cmd *cobra.Command, _ []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	filters, err := filterService.ListFilters(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list filters: %w", err)
	}
	if len(filters) == 0 {
		cmd.Println("No saved filters.")
		return nil
	}
	for _, f := range filters {
		updated := f.LastUpdated
		if updated == "" {
			updated = "never"
		}
		cmd.Printf("%s %s\n", titleStyle.Render(f.Expr), mutedStyle.Render("(updated "+updated+")"))
		if f.Description != "" {
			cmd.Printf("  %s\n", f.Description)
		}
	}
	return nil
}

func runFilterUpdate(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	ctx := cmd.Context()

	var updateErr error
	if len(args) == 1 {
		filters, err := filterService.ListFilters(ctx)
		if err != nil {
			return fmt.Errorf("failed to list filters: %w", err)
		}
		lastUpdated := ""
		for _, f := range filters {
			if f.Expr == strings.TrimSpace(args[0]) {
				lastUpdated = f.LastUpdated
			}
		}
		docs, err := filterService.UpdateFilter(ctx, args[0], lastUpdated)
		printDocuments(cmd, docs)
		cmd.Printf("%d new work(s)\n", len(docs))
		updateErr = err
	} else {
		docs, err := filterService.UpdateFilters(ctx)
		printDocuments(cmd, docs)
		cmd.Printf("%d new work(s)\n", len(docs))
		updateErr = err
	}

	if updateErr != nil {
		cmd.PrintErrln(warningStyle.Render("Some filters did not finish; they will be retried from their last date."))
		return fmt.Errorf("update incomplete: %w", updateErr)
	}
	return nil
}

func runFilterWatch(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	if err := filterService.Watch(cmd.Context(), args[0], filterDescription); err != nil {
		return fmt.Errorf("failed to watch filter: %w", err)
	}
	cmd.Printf("Watching: %s\n", args[0])
	return nil
}

func runFilterFollow(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	if err := filterService.Follow(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to follow %s: %w", args[0], err)
	}
	cmd.Printf("Following: %s\n", args[0])
	return nil
}

func runFilterCiting(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	if err := filterService.WatchCiting(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to watch citing works: %w", err)
	}
	cmd.Printf("Watching works citing %s\n", args[0])
	return nil
}

func runFilterRelated(cmd *cobra.Command, args []string) error {
	if err := requireFilterService(); err != nil {
		return err
	}
	if err := filterService.WatchRelated(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to watch related works: %w", err)
	}
	cmd.Printf("Watching works related to %s\n", args[0])
	return nil
}
