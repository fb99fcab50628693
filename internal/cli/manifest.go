package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eiffelgen/internal/manifest"
)

// ManifestOptions holds flags shared by the manifest subcommands.
type ManifestOptions struct {
	*RootOptions
	DB string
}

// NewManifestCommand creates the manifest command group.
func NewManifestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ManifestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect the generation manifest",
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "manifest database path")

	cmd.AddCommand(newManifestListCommand(opts))
	cmd.AddCommand(newManifestShowCommand(opts))

	return cmd
}

func newManifestListCommand(opts *ManifestOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List generation runs, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifestList(opts, cmd)
		},
	}
}

func newManifestShowCommand(opts *ManifestOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the records of one run",
		Long: `Show prints every transformation recorded for the given run. With no
argument the latest run is shown.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runManifestShow(opts, runID, cmd)
		},
	}
}

// openManifest resolves the database path from the --db flag or config.
func openManifest(opts *ManifestOptions) (*manifest.Store, error) {
	db := firstNonEmpty(opts.DB, opts.cfg().Manifest)
	if db == "" {
		return nil, fmt.Errorf("no manifest database configured (use --db or set manifest in %s)", DefaultConfigFile)
	}
	return manifest.Open(db)
}

func runManifestList(opts *ManifestOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	store, err := openManifest(opts)
	if err != nil {
		return outputGenerateError(formatter, "E005", err.Error(), nil)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background())
	if err != nil {
		return outputGenerateError(formatter, "E005", err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{"runs": runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %d record(s)\n", run.Seq, run.ID, run.Records)
	}
	return nil
}

func runManifestShow(opts *ManifestOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	store, err := openManifest(opts)
	if err != nil {
		return outputGenerateError(formatter, "E005", err.Error(), nil)
	}
	defer store.Close()

	ctx := context.Background()
	if runID == "" {
		latest, err := store.LatestRun(ctx)
		if errors.Is(err, manifest.ErrNoRuns) {
			return outputGenerateError(formatter, "E005", "manifest has no runs", nil)
		}
		if err != nil {
			return outputGenerateError(formatter, "E005", err.Error(), nil)
		}
		runID = latest.ID
	}

	records, err := store.RunRecords(ctx, runID)
	if err != nil {
		return outputGenerateError(formatter, "E005", err.Error(), nil)
	}
	if len(records) == 0 {
		return outputGenerateError(formatter, "E005", fmt.Sprintf("run not found: %s", runID), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{"run_id": runID, "records": records})
	}

	fmt.Fprintf(formatter.Writer, "run %s\n", runID)
	for _, rec := range records {
		fmt.Fprintf(formatter.Writer, "  %s: %s.%s guarded by %s (%s) %s\n",
			rec.File, rec.Receiver, rec.Method, rec.Invariant, rec.Timing, rec.OutputHash[:12])
	}
	return nil
}
