package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"transcriptsync/internal/blobstore"
	"transcriptsync/internal/config"
	"transcriptsync/internal/inventory"
	"transcriptsync/internal/ledger"
	"transcriptsync/internal/logging"
	"transcriptsync/internal/runlog"
	"transcriptsync/internal/source"
	syncer "transcriptsync/internal/sync"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "transcriptsync",
	Short:   "Earnings-call transcript archive sync",
	Long:    "transcriptsync keeps a local archive of earnings-call transcripts in step with the vendor API: it inventories what is stored, queries what exists, and downloads only what is missing.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		// .env is optional; environment variables win either way.
		_ = godotenv.Load()

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logCfg := logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
		if verbose {
			logCfg.Level = "debug"
		}
		logging.Init(logCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(invalidCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("transcriptsync", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/transcriptsync/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the API endpoint and monitored institutions,")
		fmt.Println("and set API_USERNAME / API_PASSWORD in the environment or a .env file.")
		return nil
	},
}

// --- sync command ---

var dryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local archive against the vendor API",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}

		store := blobstore.NewLocalStore(cfg.GetDataDir())
		client := source.NewClient(source.ClientOptions{
			BaseURL:          cfg.API.BaseURL,
			Username:         creds.Username,
			Password:         creds.Password,
			Categories:       cfg.API.IndustryCategories,
			TranscriptTypes:  cfg.API.TranscriptTypes,
			SortOrder:        cfg.API.SortOrder,
			PaginationLimit:  cfg.API.PaginationLimit,
			PaginationOffset: cfg.API.PaginationOffset,
			Timeout:          cfg.Timeout(),
		}, logging.WithComponent("source"))

		orch := syncer.New(cfg, store, client, syncer.Options{DryRun: dryRun}, logging.Logger())
		summary, err := orch.Run(context.Background())
		if err != nil {
			return err
		}

		printSummary(summary)

		if !dryRun {
			if err := recordRun(summary); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to record run history: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the plan without downloading or writing")
}

func printSummary(s *syncer.Summary) {
	if s.DryRun {
		fmt.Println("\nDry run: nothing was downloaded or written.")
	}
	fmt.Println("\nSync complete:")
	fmt.Printf("  Institutions: %d (%d failed)\n", len(s.Results), s.Failed)
	fmt.Printf("  Already stored: %d (%d unparseable filenames)\n", s.StoredFound, s.Unparseable)
	fmt.Printf("  Downloaded: %d\n", s.Downloaded)
	fmt.Printf("  Rejected (invalid title): %d\n", s.Rejected)
	fmt.Printf("  Skipped via invalid ledger: %d\n", s.SkippedInvalid)
	fmt.Printf("  Unchanged: %d\n", s.Unchanged)
	fmt.Printf("  Duration: %s\n", s.Duration().Round(time.Millisecond))

	if len(s.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range s.Errors {
			if e.Ticker != "" {
				fmt.Printf("  [%s] %s: %s\n", e.Kind, e.Ticker, e.Message)
			} else {
				fmt.Printf("  [%s] %s\n", e.Kind, e.Message)
			}
		}
	}
}

func recordRun(s *syncer.Summary) error {
	db, err := runlog.Open(cfg.GetRunLogPath())
	if err != nil {
		return err
	}
	defer db.Close()

	run, errs := s.RunRecord()
	_, err = db.InsertRun(run, errs)
	return err
}

// --- inventory command ---

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Scan the archive and report what is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := blobstore.NewLocalStore(cfg.GetDataDir())
		result, err := inventory.NewScanner(store, logging.Logger()).Scan("")
		if err != nil {
			return fmt.Errorf("scanning archive: %w", err)
		}

		byInstitution := make(map[string]int)
		for _, rec := range result.Records {
			byInstitution[rec.Ticker]++
		}

		fmt.Printf("Archive: %s\n\n", cfg.GetDataDir())
		fmt.Printf("Transcripts stored: %d\n", len(result.Records))
		for _, inst := range cfg.Institutions {
			fmt.Printf("  %s: %d\n", inst.Ticker, byInstitution[inst.Ticker])
		}

		if len(result.Unparseable) > 0 {
			fmt.Printf("\nUnparseable filenames: %d\n", len(result.Unparseable))
			for i, u := range result.Unparseable {
				if i == 10 {
					fmt.Printf("  ... and %d more\n", len(result.Unparseable)-10)
					break
				}
				fmt.Printf("  %s (%s)\n", u.Filename, u.Location)
			}
		}
		return nil
	},
}

// --- invalid command ---

var invalidCmd = &cobra.Command{
	Use:   "invalid",
	Short: "List transcripts in the invalid-document ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := blobstore.NewLocalStore(cfg.GetDataDir())
		table, err := ledger.Load(store, "", logging.Logger())
		if err != nil {
			return fmt.Errorf("loading ledger: %w", err)
		}

		if table.Len() == 0 {
			fmt.Println("Invalid-document ledger is empty.")
			return nil
		}

		fmt.Printf("Invalid documents: %d\n\n", table.Len())
		for _, e := range table.Entries() {
			fmt.Printf("  %s event %s v%s: %q (%s)\n", e.Ticker, e.EventID, e.VersionID, e.TitleFound, e.Reason)
		}
		return nil
	},
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := runlog.Open(cfg.GetRunLogPath())
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(10)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No sync runs recorded yet. Run 'transcriptsync sync' first.")
			return nil
		}

		fmt.Println("Recent runs (newest first):")
		for _, r := range runs {
			fmt.Printf("\n  %s  [%s]\n", r.StartedAt, r.Status)
			fmt.Printf("    institutions=%d downloaded=%d rejected=%d skipped=%d duration=%.1fs\n",
				r.Institutions, r.Downloaded, r.Rejected, r.SkippedInvalid, r.DurationSeconds)
		}

		errs, err := db.ErrorsForRun(runs[0].ID)
		if err != nil {
			return fmt.Errorf("listing run errors: %w", err)
		}
		if len(errs) > 0 {
			fmt.Printf("\nErrors in latest run:\n")
			for _, e := range errs {
				fmt.Printf("  [%s] %s: %s\n", e.Kind, e.Ticker, e.Message)
			}
		}
		return nil
	},
}
