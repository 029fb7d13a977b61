package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amjkhan-git/HMCC-Calendar/internal/calendar"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/database"
)

type InitDBOptions struct {
	*RootOptions
	Fresh bool
}

func NewInitDBCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitDBOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create tables and seed the Ramadan calendar",
		Long: `Create the calendar, audit and session tables and seed every date of
Ramadan 1447. Existing dates keep their bookings; only their religious
date labels are repaired. With --fresh all tables are dropped first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initDB(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Fresh, "fresh", false, "drop and recreate all tables (destroys bookings)")

	return cmd
}

func initDB(cmd *cobra.Command, opts *InitDBOptions) error {
	a, err := newApp(opts.RootOptions, false)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.Fresh {
		a.log.Warn("dropping all tables")
		if err := database.DropAll(a.db); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	if err := database.Migrate(a.db); err != nil {
		return err
	}

	res, err := a.calendar.InitializeCalendar(cmd.Context(), calendar.Ramadan1447)
	if err != nil {
		return err
	}
	a.log.Info("calendar initialized",
		zap.Int("inserted", res.Inserted),
		zap.Int("repaired", res.Repaired),
		zap.Int("unchanged", res.Skipped),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "inserted=%d repaired=%d unchanged=%d\n", res.Inserted, res.Repaired, res.Skipped)
	return nil
}
