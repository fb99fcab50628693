package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/eiffelgen/internal/manifest"
	"github.com/roach88/eiffelgen/internal/policy"
	"github.com/roach88/eiffelgen/internal/rewrite"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Write     bool   // rewrite files in place
	Output    string // output file path (single input only)
	PolicyDir string // contract policy directory
	Manifest  string // manifest database path
}

// GenerateResult is the JSON payload for a successful generate.
type GenerateResult struct {
	Files      []string            `json:"files"`
	Transforms []rewrite.Transform `json:"transforms"`
	RunID      string              `json:"run_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <file.go> [file.go...]",
		Short: "Inject contract wrappers into annotated methods",
		Long: `Generate contract wrappers for methods carrying an //eiffel:invariant
directive or matched by a contract policy.

Each annotated method is replaced by a wrapper under the original name that
checks the invariant at the configured points, plus the original body under
an internal name. Files without annotated methods pass through untouched.

By default the transformed source is written to stdout. Use -w to rewrite
files in place, or -o to write a single input's output to a chosen path.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "rewrite files in place")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (single input only)")
	cmd.Flags().StringVar(&opts.PolicyDir, "policy", "", "contract policy directory")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "manifest database path")

	return cmd
}

func runGenerate(opts *GenerateOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Output != "" && len(files) > 1 {
		return outputGenerateError(formatter, "E001", "-o accepts exactly one input file", nil)
	}
	if opts.Output != "" && opts.Write {
		return outputGenerateError(formatter, "E001", "-o and -w are mutually exclusive", nil)
	}

	rewriteOpts := rewrite.Options{
		Mode:          rewrite.FailFast,
		DefaultTiming: opts.cfg().ResolvedTiming(),
	}

	if dir := firstNonEmpty(opts.PolicyDir, opts.cfg().Policy); dir != "" {
		set, errs := policy.Load(dir)
		if len(errs) > 0 {
			return outputPolicyErrors(formatter, errs)
		}
		formatter.VerboseLog("Loaded %d policy rule(s) from %s", set.Len(), dir)
		rewriteOpts.Policy = set
	}

	result := &GenerateResult{}
	outputs := make(map[string][]byte, len(files))

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return outputGenerateError(formatter, "E005", fmt.Sprintf("reading %s: %v", file, err), nil)
		}

		res, errs := rewrite.File(file, src, rewriteOpts)
		if len(errs) > 0 {
			return outputRewriteErrors(formatter, errs)
		}

		formatter.VerboseLog("%s: %d method(s) transformed", file, len(res.Transforms))
		result.Files = append(result.Files, file)
		result.Transforms = append(result.Transforms, res.Transforms...)
		outputs[file] = res.Source
	}

	if err := writeOutputs(opts, files, outputs, cmd); err != nil {
		return outputGenerateError(formatter, "E007", err.Error(), nil)
	}

	if db := firstNonEmpty(opts.Manifest, opts.cfg().Manifest); db != "" && len(result.Transforms) > 0 {
		runID, err := recordRun(db, result.Transforms)
		if err != nil {
			return outputGenerateError(formatter, "E007", fmt.Sprintf("recording manifest: %v", err), nil)
		}
		result.RunID = runID
		formatter.VerboseLog("Recorded run %s in %s", runID, db)
	}

	return outputGenerateSuccess(formatter, opts, result)
}

// writeOutputs delivers transformed sources per the -w/-o flags. Stdout
// delivery is skipped in JSON mode; the source would corrupt the response
// envelope.
func writeOutputs(opts *GenerateOptions, files []string, outputs map[string][]byte, cmd *cobra.Command) error {
	switch {
	case opts.Write:
		for _, file := range files {
			if err := os.WriteFile(file, outputs[file], 0644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}
		}
	case opts.Output != "":
		if err := os.WriteFile(opts.Output, outputs[files[0]], 0644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.Output, err)
		}
	case opts.Format != "json":
		for _, file := range files {
			if _, err := cmd.OutOrStdout().Write(outputs[file]); err != nil {
				return err
			}
		}
	}
	return nil
}

// recordRun appends one manifest run covering all transforms.
func recordRun(db string, transforms []rewrite.Transform) (string, error) {
	store, err := manifest.Open(db)
	if err != nil {
		return "", err
	}
	defer store.Close()

	ctx := context.Background()
	runID, err := store.BeginRun(ctx)
	if err != nil {
		return "", err
	}

	for _, tr := range transforms {
		rec := manifest.Record{
			RunID:      runID,
			File:       tr.File,
			Receiver:   tr.Receiver,
			Method:     tr.Method,
			Invariant:  tr.Spec.InvariantName,
			Timing:     tr.Spec.Timing.String(),
			OutputHash: tr.Hash,
		}
		if err := store.WriteRecord(ctx, rec); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func outputGenerateSuccess(formatter *OutputFormatter, opts *GenerateOptions, result *GenerateResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if opts.Write || opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Transformed %d method(s) in %d file(s)\n",
			len(result.Transforms), len(result.Files))
		for _, tr := range result.Transforms {
			fmt.Fprintf(formatter.Writer, "  %s: %s.%s guarded by %s (%s)\n",
				tr.File, tr.Receiver, tr.Method, tr.Spec.InvariantName, tr.Spec.Timing)
		}
		if result.RunID != "" {
			fmt.Fprintf(formatter.Writer, "Manifest run %s\n", result.RunID)
		}
	}

	return nil
}

func outputGenerateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputRewriteErrors reports rewrite failures with their source positions.
func outputRewriteErrors(formatter *OutputFormatter, errs []error) error {
	for _, err := range errs {
		code, message := splitRewriteError(err)
		_ = formatter.Error(code, message, nil)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("generation failed with %d error(s)", len(errs)))
}

func outputPolicyErrors(formatter *OutputFormatter, errs []error) error {
	for _, err := range errs {
		code := "E001"
		var le *policy.LoadError
		if errors.As(err, &le) {
			code = le.Code
		}
		_ = formatter.Error(code, err.Error(), nil)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("policy load failed with %d error(s)", len(errs)))
}

// splitRewriteError extracts the code and positioned message from a rewrite
// error.
func splitRewriteError(err error) (string, string) {
	var re *rewrite.Error
	if errors.As(err, &re) {
		if re.Pos.IsValid() {
			return re.Code, fmt.Sprintf("%s: %s", re.Pos, re.Message)
		}
		return re.Code, re.Message
	}
	return "E001", err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
