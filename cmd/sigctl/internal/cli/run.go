package cli

import (
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/sig"
)

// RunOptions holds the flags specific to `sigctl run`.
type RunOptions struct {
	*RootOptions

	Scenario string
}

// NewRunCommand builds `sigctl run`, which constructs a Domain from the
// root --config flag and drives one canned scenario through it inside a
// single synchronous transaction.
func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: root}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a Domain and drive one of the canned scenarios through it",
		Long: "run builds a sig.Domain from the configured engine and drives one of the\n" +
			"canned propagation scenarios (" + joinNames(names) + ") through it inside a\n" +
			"single Sync transaction, logging each observed result (with --verbose).",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "diamond", "scenario to run: "+joinNames(names))

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: level}))

	cfg := DefaultDomainConfig()
	if opts.Config != "" {
		loaded, err := LoadDomainConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "load domain config", err)
		}
		cfg = loaded
	}

	domain, err := cfg.Build()
	if err != nil {
		return WrapExitError(ExitCommandError, "build domain", err)
	}

	var turnErr error
	_, txErr := domain.Transaction(sig.Sync, func() error {
		turnErr = runScenario(opts.Scenario, domain, log)
		return turnErr
	})
	if turnErr != nil {
		return WrapExitError(ExitCommandError, "run scenario", turnErr)
	}
	if txErr != nil {
		return WrapExitError(ExitTurnFailure, "scenario turn failed", txErr)
	}

	return nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
