package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amjkhan-git/HMCC-Calendar/internal/router"
	"github.com/amjkhan-git/HMCC-Calendar/internal/worker"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/database"
)

type ServeOptions struct {
	*RootOptions
	Migrate bool
	Sweep   bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", true, "create missing tables before serving")
	cmd.Flags().BoolVar(&opts.Sweep, "sweep", true, "remove expired admin sessions on the configured schedule")

	return cmd
}

func serve(ctx context.Context, opts *ServeOptions) error {
	a, err := newApp(opts.RootOptions, true)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.Migrate {
		if err := database.Migrate(a.db); err != nil {
			return err
		}
	}

	if opts.Sweep {
		sweeper, err := worker.NewSessionSweeper(a.auth, a.cfg.Auth.SweepSchedule, a.log.Named("sweeper"))
		if err != nil {
			return err
		}
		sweeper.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			sweeper.Stop(stopCtx)
		}()
	}

	e := router.New(router.Deps{
		Server:   a.cfg.Server,
		Log:      a.log.Named("http"),
		Calendar: a.calendar,
		Bookings: a.bookings,
		Auth:     a.auth,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HMCC calendar API starting", zap.String("port", a.cfg.Server.Port))
		errCh <- e.Start(":" + a.cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
