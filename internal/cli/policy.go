package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eiffelgen/internal/policy"
)

// PolicyVetResult is the JSON payload for a successful policy vet.
type PolicyVetResult struct {
	Directory string        `json:"directory"`
	Rules     []policy.Rule `json:"rules"`
}

// NewPolicyCommand creates the policy command group.
func NewPolicyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect contract policy directories",
	}

	cmd.AddCommand(newPolicyVetCommand(rootOpts))

	return cmd
}

func newPolicyVetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vet <dir>",
		Short: "Validate a contract policy directory",
		Long: `Vet loads every CUE file in the directory, compiles the contracts list,
and reports each rule. Invalid rules are reported individually; a directory
with any invalid rule fails the vet.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicyVet(rootOpts, args[0], cmd)
		},
	}
}

func runPolicyVet(rootOpts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	set, errs := policy.Load(dir)
	if len(errs) > 0 {
		return outputPolicyErrors(formatter, errs)
	}

	result := &PolicyVetResult{Directory: dir, Rules: set.Rules()}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d rule(s) valid in %s\n", set.Len(), dir)
	for _, rule := range result.Rules {
		methods := "all methods"
		if len(rule.Methods) > 0 {
			methods = strings.Join(rule.Methods, ", ")
		}
		timing := rule.Timing
		if timing == "" {
			timing = "before_and_after"
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s (%s) on %s\n", rule.Receiver, rule.Invariant, timing, methods)
	}

	return nil
}
