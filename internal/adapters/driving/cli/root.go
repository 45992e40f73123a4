// Package cli provides the cobra command tree for litdb.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// RootEnv names the environment variable holding the database directory.
const RootEnv = "LITDB_ROOT"

// skipServices marks commands that run without opening the database.
const skipServices = "skip-services"

var (
	version = "dev"

	ingestService    driving.IngestService
	searchService    driving.SearchService
	filterService    driving.FilterService
	tagService       driving.TagService
	directoryService driving.DirectoryService
	importService    driving.ImportService
	settingsService  driving.SettingsService

	rootDir   string
	verbose   bool
	opener    Opener
	closeFunc func() error
)

// Services holds the driving ports the commands call.
type Services struct {
	Ingest    driving.IngestService
	Search    driving.SearchService
	Filter    driving.FilterService
	Tag       driving.TagService
	Directory driving.DirectoryService
	Import    driving.ImportService
	Settings  driving.SettingsService

	// Root is the resolved database directory.
	Root string

	// Close releases the store. It may be nil.
	Close func() error
}

// Opener builds the services for a database directory. confirm is asked
// before large citing sweeps and further iterative search rounds.
type Opener func(root string, confirm driven.ConfirmPolicy) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "litdb",
	Short: "A personal literature database",
	Long: `litdb keeps scientific literature and local documents in a SQLite
database with full-text and vector indexes.

Works are resolved through OpenAlex and can be expanded along their
references, citing works and related works. Saved filters keep the
database up to date with new publications.`,
	SilenceUsage:      true,
	PersistentPreRunE: openServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "",
		"database directory (default $"+RootEnv+" or ~/.litdb)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	cobra.OnFinalize(closeServices)
}

// Execute runs the command tree. open is called once before any command
// that needs the database.
func Execute(ctx context.Context, v string, open Opener) error {
	version = v
	opener = open
	return rootCmd.ExecuteContext(ctx)
}

func openServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if opener == nil || cmd.Annotations[skipServices] == "true" {
		return nil
	}

	root, err := resolveRoot(rootDir)
	if err != nil {
		return err
	}
	logger.Debug("Database root: %s", root)

	svc, err := opener(root, NewTerminalConfirm(os.Stdin, cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("opening %s: %w", root, err)
	}
	setServices(svc)
	return nil
}

func setServices(svc *Services) {
	ingestService = svc.Ingest
	searchService = svc.Search
	filterService = svc.Filter
	tagService = svc.Tag
	directoryService = svc.Directory
	importService = svc.Import
	settingsService = svc.Settings
	mcpRoot = svc.Root
	closeFunc = svc.Close
}

func closeServices() {
	if closeFunc == nil {
		return
	}
	if err := closeFunc(); err != nil {
		logger.Warn("Closing database: %v", err)
	}
	closeFunc = nil
}

// resolveRoot picks the database directory from the flag, the environment
// or the default under the home directory.
func resolveRoot(flag string) (string, error) {
	root := flag
	if root == "" {
		root = os.Getenv(RootEnv)
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		root = filepath.Join(home, ".litdb")
	}
	return filepath.Abs(root)
}
