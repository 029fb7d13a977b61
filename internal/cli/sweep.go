package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amjkhan-git/HMCC-Calendar/internal/worker"
)

func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Delete expired admin sessions once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, false)
			if err != nil {
				return err
			}
			defer a.close()

			sweeper, err := worker.NewSessionSweeper(a.auth, a.cfg.Auth.SweepSchedule, a.log.Named("sweeper"))
			if err != nil {
				return err
			}
			n, err := sweeper.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", n)
			return nil
		},
	}
}
