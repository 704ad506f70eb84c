// Package cli команды shortener: сервер и обслуживание ссылок из терминала.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/app"
	"github.com/fsdevblog/shortlinks/internal/bmeta"
	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/logs"
)

type runner struct {
	build bmeta.Info
	conf  *config.Config
}

// NewRootCommand корневая команда. Без подкоманды запускает сервер.
func NewRootCommand(build bmeta.Info) *cobra.Command {
	r := &runner{build: build}

	root := &cobra.Command{
		Use:   "shortener",
		Short: "Сервис коротких ссылок с ограниченным сроком жизни",
		Long: `Сокращает ссылки, перенаправляет по ним и считает переходы.
Настройки берутся из .env, переменных окружения и флагов (флаги главнее).`,
		SilenceUsage: true,
		RunE:         r.serve,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			conf, err := config.LoadConfig(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			r.conf = conf
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		r.serveCommand(),
		r.createCommand(),
		r.statsCommand(),
		r.listCommand(),
		r.deleteCommand(),
		r.deactivateCommand(),
		r.migrateCommand(),
		r.purgeCommand(),
		r.versionCommand(),
	)
	return root
}

// Execute запускает корневую команду с аргументами процесса.
func Execute(ctx context.Context, build bmeta.Info) error {
	return NewRootCommand(build).ExecuteContext(ctx) //nolint:wrapcheck
}

// withApp поднимает подключение к хранилищу на время выполнения fn.
// Логи служебных команд идут в stderr, чтобы не смешиваться с выводом.
func (r *runner) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	logger, err := app.NewLogger(*r.conf, logs.WithOutput("stderr"), logs.WithLevel(string(logs.LevelTypeWarning)))
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
	return fn(ctx, a)
}
