package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/app"
)

func (r *runner) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		Args:  cobra.NoArgs,
		RunE:  r.serve,
	}
}

func (r *runner) serve(cmd *cobra.Command, _ []string) error {
	logger, err := app.NewLogger(*r.conf)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := app.New(ctx, *r.conf, logger)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer func() {
		if closeErr := a.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Error("close app", zap.Error(closeErr))
		}
	}()

	logger.Info("Starting application",
		zap.String("version", r.build.WithDefaults().Version),
		zap.String("storage", string(r.conf.Storage)),
		zap.String("baseURL", r.conf.BaseURL),
	)
	if runErr := a.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run app: %w", runErr)
	}
	return nil
}
