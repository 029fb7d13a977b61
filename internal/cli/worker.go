package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/consumer"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/logger"
	"github.com/amjkhan-git/HMCC-Calendar/pkg/rabbitmq"
)

func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume lifecycle events and send sponsor notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd, rootOpts)
		},
	}
}

func runWorker(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.RabbitMQ.URL == "" {
		return errors.New("rabbitmq.url is required to run the worker")
	}
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	mq, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue, consumer.BindingKeys...)
	if err != nil {
		return err
	}
	defer mq.Close()

	msgs, err := mq.Consume()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc := consumer.NewNotificationConsumer(consumer.LogNotifier{Log: log.Named("notify")}, log.Named("consumer"))
	done := nc.Start(ctx, msgs)
	log.Info("notification worker started", zap.String("queue", cfg.RabbitMQ.Queue))

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case <-done:
		return errors.New("broker closed the delivery channel")
	}
	return nil
}
