package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litdb/litdb/internal/core/ports/driving"
)

var (
	addReferences    bool
	addCiting        bool
	addRelated       bool
	addAll           bool
	addBypass        bool
	addAuthor        bool
	addMaxReferences int
	addMaxCiting     int
	addMaxRelated    int
	addTagList       string
)

var addCmd = &cobra.Command{
	Use:   "add [sources...]",
	Short: "Add works, authors, files and web pages",
	Long: `Adds each source to the database. A source may be:

  a DOI (10.1021/...), DOI URL, OpenAlex work id (W123...) or work URL
  an ORCID or OpenAlex author id (A123...): every work of the author
  an http(s) URL: the page text
  a path to a local file: .bib files also add the works they cite by DOI,
  other files are stored as text under their absolute path

With --author every source is treated as an author.

Expansion flags add one hop of the citation graph around works:
  --references  works the added work cites
  --citing      works citing the added work
  --related     OpenAlex related works

Works cited by more than openalex.citation_count_trigger papers ask for
confirmation before their citing works are fetched, unless --bypass is set.
--tag applies comma-separated tags to every added work, file and page.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVarP(&addReferences, "references", "r", false, "also add referenced works")
	addCmd.Flags().BoolVarP(&addCiting, "citing", "c", false, "also add citing works")
	addCmd.Flags().BoolVar(&addRelated, "related", false, "also add related works")
	addCmd.Flags().BoolVarP(&addAll, "all", "a", false, "add references, citing and related works")
	addCmd.Flags().BoolVar(&addBypass, "bypass", false, "skip the citing-count confirmation")
	addCmd.Flags().BoolVar(&addAuthor, "author", false, "treat every source as an author and add all their works")
	addCmd.Flags().IntVar(&addMaxReferences, "max-references", 0, "cap on referenced works (0 = no cap)")
	addCmd.Flags().IntVar(&addMaxCiting, "max-citing", 0, "cap on citing works (0 = ask above the trigger, -1 = all)")
	addCmd.Flags().IntVar(&addMaxRelated, "max-related", 0, "cap on related works (0 = no cap)")
	addCmd.Flags().StringVarP(&addTagList, "tag", "t", "", "comma-separated tags for the added sources")
	rootCmd.AddCommand(addCmd)
}

// workOptions builds WorkOptions from the add flags.
func workOptions() driving.WorkOptions {
	opts := driving.WorkOptions{
		References:    addReferences,
		Citing:        addCiting,
		Related:       addRelated,
		Bypass:        addBypass,
		MaxReferences: addMaxReferences,
		MaxCiting:     addMaxCiting,
		MaxRelated:    addMaxRelated,
	}
	if addAll {
		opts.References, opts.Citing, opts.Related = true, true, true
	}
	return opts
}

// sourceKind says how an add argument is ingested.
type sourceKind int

const (
	sourceWork sourceKind = iota
	sourceAuthor
	sourceURL
	sourceFile
)

var (
	bareWorkID   = regexp.MustCompile(`^[Ww]\d+$`)
	bareAuthorID = regexp.MustCompile(`^[Aa]\d+$`)
	bareORCID    = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dXx]$`)
)

// classifySource routes an argument by its shape. Anything that is not an
// identifier or a web address is a file path.
func classifySource(arg string) sourceKind {
	lower := strings.ToLower(strings.TrimSpace(arg))
	switch {
	case strings.HasPrefix(lower, "10."), strings.HasPrefix(lower, "doi:"), strings.Contains(lower, "doi.org/"):
		return sourceWork
	case strings.Contains(lower, "orcid"), bareORCID.MatchString(lower),
		strings.HasPrefix(lower, "https://openalex.org/a"), bareAuthorID.MatchString(lower):
		return sourceAuthor
	case strings.HasPrefix(lower, "https://openalex.org/w"), bareWorkID.MatchString(lower):
		return sourceWork
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return sourceURL
	default:
		return sourceFile
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	tags := splitTags(addTagList)
	if len(tags) > 0 && tagService == nil {
		return errors.New("tag service not configured")
	}
	ctx := cmd.Context()

	groups := make(map[sourceKind][]string)
	for _, arg := range args {
		kind := classifySource(arg)
		if addAuthor {
			kind = sourceAuthor
		}
		groups[kind] = append(groups[kind], arg)
	}
	if (len(groups[sourceFile]) > 0 || len(groups[sourceURL]) > 0) && importService == nil {
		return errors.New("import service not configured")
	}

	var (
		stored []string
		errs   []error
	)

	if works := groups[sourceWork]; len(works) > 0 {
		ids, err := ingestService.AddWorks(ctx, works, workOptions())
		stored = append(stored, ids...)
		if err != nil {
			errs = append(errs, fmt.Errorf("adding works: %w", err))
		}
		cmd.Printf("%s %d work(s)\n", successStyle.Render("Processed"), len(works))
	}

	for _, id := range groups[sourceAuthor] {
		if err := ingestService.AddAuthor(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("adding author %s: %w", id, err))
			continue
		}
		cmd.Printf("%s %s\n", successStyle.Render("Added works of"), id)
	}

	for _, path := range groups[sourceFile] {
		id, added, err := importService.AddFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("adding %s: %w", path, err))
			continue
		}
		stored = append(stored, id)
		printAdded(cmd, id, added)
	}

	for _, url := range groups[sourceURL] {
		added, err := importService.AddURL(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("adding %s: %w", url, err))
			continue
		}
		stored = append(stored, url)
		printAdded(cmd, url, added)
	}

	if len(tags) > 0 && len(stored) > 0 {
		if err := tagService.AddTags(ctx, stored, tags); err != nil {
			errs = append(errs, fmt.Errorf("tagging: %w", err))
		} else {
			cmd.Printf("Tagged %d source(s) with %s\n", len(stored), strings.Join(tags, ", "))
		}
	}
	if len(groups[sourceAuthor]) > 0 && len(tags) > 0 {
		cmd.Println(mutedStyle.Render("Tags are not applied to works added through an author."))
	}
	return errors.Join(errs...)
}

func printAdded(cmd *cobra.Command, id string, added bool) {
	if added {
		cmd.Printf("%s %s\n", successStyle.Render("Added"), id)
		return
	}
	cmd.Printf("%s %s\n", mutedStyle.Render("Already stored"), id)
}
