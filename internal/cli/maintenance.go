package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fsdevblog/shortlinks/internal/app"
	"github.com/fsdevblog/shortlinks/internal/bmeta"
)

// migrateCommand схема создаётся при подключении, поэтому достаточно открыть хранилище.
func (r *runner) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Создать или обновить схему хранилища",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(_ context.Context, _ *app.App) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Storage %s migrated\n", r.conf.Storage) //nolint:errcheck
				return nil
			})
		},
	}
}

func (r *runner) purgeCommand() *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Удалить ссылки, истекшие раньше чем grace назад",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("grace") {
				grace = r.conf.ReapGrace
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				deleted, err := a.Services.LinkService.PurgeExpired(ctx, grace)
				if err != nil {
					return fmt.Errorf("purge expired: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired short urls\n", deleted) //nolint:errcheck
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 0, "Сколько хранить истекшие ссылки (по умолчанию REAP_GRACE)")
	return cmd
}

func (r *runner) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Версия сборки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bmeta.Print(cmd.OutOrStdout(), r.build) //nolint:wrapcheck
		},
	}
}
