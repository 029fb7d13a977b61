package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the hmcc-calendar command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hmcc-calendar",
		Short: "Ramadan iftar sponsorship calendar",
		Long: `Booking service for the HMCC Ramadan iftar sponsorship calendar.

Configuration is read from config.yaml (or --config) and overridden by
environment variables such as DB_HOST or AUTH_JWT_SECRET.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewInitDBCommand(opts))
	cmd.AddCommand(NewWorkerCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))

	return cmd
}
