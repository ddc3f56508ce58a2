package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by every sigctl subcommand.
type RootOptions struct {
	Verbose bool
	Config  string
}

// NewRootCommand builds the sigctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "sigctl",
		Short:         "Drive and trace the sig dataflow engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log each observed scenario result")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a domain config YAML file (default: sequential engine)")

	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
