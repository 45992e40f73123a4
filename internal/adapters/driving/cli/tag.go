package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagList string

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  `Attach, detach, delete and list tags on stored sources.`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add [sources...]",
	Short: "Tag sources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTagAdd,
}

var tagRemoveCmd = &cobra.Command{
	Use:   "rm [sources...]",
	Short: "Remove tags from sources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTagRemove,
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete [tags...]",
	Short: "Delete tags everywhere",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTagDelete,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

var tagShowCmd = &cobra.Command{
	Use:   "show [tag]",
	Short: "List sources carrying a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagShow,
}

func init() {
	tagAddCmd.Flags().StringVarP(&tagList, "tags", "t", "", "comma-separated tags to apply")
	tagRemoveCmd.Flags().StringVarP(&tagList, "tags", "t", "", "comma-separated tags to remove")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)
	tagCmd.AddCommand(tagDeleteCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagShowCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}
	tags := splitTags(tagList)
	if err := tagService.AddTags(cmd.Context(), args, tags); err != nil {
		return fmt.Errorf("failed to tag: %w", err)
	}
	cmd.Printf("Tagged %d source(s) with %s\n", len(args), strings.Join(tags, ", "))
	return nil
}

func runTagRemove(cmd *cobra.Command, args []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}
	tags := splitTags(tagList)
	if err := tagService.RemoveTags(cmd.Context(), args, tags); err != nil {
		return fmt.Errorf("failed to remove tags: %w", err)
	}
	cmd.Printf("Removed %s from %d source(s)\n", strings.Join(tags, ", "), len(args))
	return nil
}

func runTagDelete(cmd *cobra.Command, args []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}
	if err := tagService.DeleteTags(cmd.Context(), args); err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}
	cmd.Printf("Deleted %d tag(s)\n", len(args))
	return nil
}

func runTagList(cmd *cobra.Command, _ []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}
	tags, err := tagService.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	if len(tags) == 0 {
		cmd.Println("No tags.")
		return nil
	}
	for _, t := range tags {
		cmd.Printf("%s %s\n", titleStyle.Render(t.Name), mutedStyle.Render(fmt.Sprintf("(%d)", t.Count)))
	}
	return nil
}

func runTagShow(cmd *cobra.Command, args []string) error {
	if tagService == nil {
		return errors.New("tag service not configured")
	}
	docs, err := tagService.Tagged(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list tagged sources: %w", err)
	}
	if len(docs) == 0 {
		cmd.Printf("No sources tagged %s\n", args[0])
		return nil
	}
	printDocuments(cmd, docs)
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
