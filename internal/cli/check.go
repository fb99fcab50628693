package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/eiffelgen/internal/policy"
	"github.com/roach88/eiffelgen/internal/rewrite"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	PolicyDir string
}

// CheckResult is the JSON payload for a check run.
type CheckResult struct {
	Files   int          `json:"files"`
	Methods int          `json:"methods"`
	Errors  []CheckIssue `json:"errors,omitempty"`
}

// CheckIssue is one validation failure with its source position.
type CheckIssue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Position string `json:"position,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file.go> [file.go...]",
		Short: "Validate contract directives without generating code",
		Long: `Check runs the full transformation pipeline over each file but discards
the output. Every annotated method is validated, so a file with several bad
directives reports all of them in one pass.

Exit codes: 0 when every directive is valid, 1 when validation errors were
found, 2 on command errors such as unreadable files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PolicyDir, "policy", "", "contract policy directory")

	return cmd
}

func runCheck(opts *CheckOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rewriteOpts := rewrite.Options{
		Mode:          rewrite.CollectAll,
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

	result := &CheckResult{}

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return outputGenerateError(formatter, "E005", fmt.Sprintf("reading %s: %v", file, err), nil)
		}

		res, errs := rewrite.File(file, src, rewriteOpts)
		result.Files++
		for _, err := range errs {
			result.Errors = append(result.Errors, checkIssue(err))
		}
		if res != nil {
			result.Methods += len(res.Transforms)
		}
	}

	return outputCheckResult(formatter, result)
}

func checkIssue(err error) CheckIssue {
	issue := CheckIssue{Code: "E001", Message: err.Error()}
	var re *rewrite.Error
	if errors.As(err, &re) {
		issue.Code = re.Code
		issue.Message = re.Message
		if re.Pos.IsValid() {
			issue.Position = re.Pos.String()
		}
	}
	return issue
}

func outputCheckResult(formatter *OutputFormatter, result *CheckResult) error {
	if len(result.Errors) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d method(s) valid across %d file(s)\n",
			result.Methods, result.Files)
		return nil
	}

	if formatter.Format == "json" {
		_ = formatter.Error("E001",
			fmt.Sprintf("check failed with %d error(s)", len(result.Errors)), result.Errors)
	} else {
		for _, issue := range result.Errors {
			if issue.Position != "" {
				fmt.Fprintf(formatter.Writer, "✗ %s: [%s] %s\n", issue.Position, issue.Code, issue.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ [%s] %s\n", issue.Code, issue.Message)
			}
		}
		fmt.Fprintf(formatter.Writer, "%d error(s) in %d file(s)\n", len(result.Errors), result.Files)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("check failed with %d error(s)", len(result.Errors)))
}
