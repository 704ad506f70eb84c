package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/fsdevblog/shortlinks/internal/app"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/services"
)

const recentClicks = 10

func (r *runner) createCommand() *cobra.Command {
	var (
		rawURL  string
		code    string
		minutes int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать короткую ссылку",
		Example: `  shortener create --url=https://go.dev/doc
  shortener create --url=example.com --code=docs --minutes=120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				link, err := a.Services.LinkService.Create(ctx, services.CreateParams{
					OriginalURL:     rawURL,
					CustomCode:      code,
					ValidityMinutes: minutes,
					CreatedBy:       "cli",
				})
				if err != nil {
					return fmt.Errorf("create short url: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(),
					"Code: %s\nShort URL: %s\nOriginal URL: %s\nExpires at: %s\n",
					link.ShortCode, link.ShortURL(r.conf.BaseURL), link.OriginalURL,
					link.ExpiresAt.Format(time.RFC3339),
				)
				return err //nolint:wrapcheck
			})
		},
	}
	cmd.Flags().StringVar(&rawURL, "url", "", "Исходный адрес")
	cmd.Flags().StringVar(&code, "code", "", "Свой короткий код (3-20 символов)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Срок жизни в минутах (1-1440), по умолчанию из конфига")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

type statsOutput struct {
	ShortCode   string         `json:"shortCode"`
	ShortURL    string         `json:"shortUrl"`
	OriginalURL string         `json:"originalUrl"`
	CreatedAt   time.Time      `json:"createdAt"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	IsActive    bool           `json:"isActive"`
	IsExpired   bool           `json:"isExpired"`
	TotalClicks int            `json:"totalClicks"`
	CreatedBy   string         `json:"createdBy"`
	Recent      []models.Click `json:"recentClicks"`
}

func (r *runner) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <short-code>",
		Short: "Показать статистику переходов",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				// из терминала смотрим и истекшие ссылки
				link, err := a.Services.LinkService.Info(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get stats: %w", err)
				}
				now := a.Services.LinkService.Now()
				recent := link.RecentClicks(recentClicks)
				for i := range recent {
					recent[i].UserAgent = models.Truncate(recent[i].UserAgent, models.SummaryAgentLen)
				}
				return writeJSON(cmd.OutOrStdout(), statsOutput{
					ShortCode:   link.ShortCode,
					ShortURL:    link.ShortURL(r.conf.BaseURL),
					OriginalURL: link.OriginalURL,
					CreatedAt:   link.CreatedAt,
					ExpiresAt:   link.ExpiresAt,
					IsActive:    link.IsActive,
					IsExpired:   link.IsExpired(now),
					TotalClicks: link.TotalClicks,
					CreatedBy:   link.CreatedBy,
					Recent:      recent,
				})
			})
		},
	}
}

func (r *runner) listCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Последние созданные ссылки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				links, err := a.Services.LinkService.List(ctx, limit)
				if err != nil {
					return fmt.Errorf("list short urls: %w", err)
				}
				now := a.Services.LinkService.Now()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
				fmt.Fprintln(w, "CODE\tCLICKS\tACTIVE\tEXPIRED\tORIGINAL URL") //nolint:errcheck
				for _, l := range links {
					fmt.Fprintf(w, "%s\t%d\t%t\t%t\t%s\n", //nolint:errcheck
						l.ShortCode, l.TotalClicks, l.IsActive, l.IsExpired(now), l.OriginalURL)
				}
				return w.Flush() //nolint:wrapcheck
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", services.DefaultListLimit, "Сколько ссылок показать (1-50)")
	return cmd
}

func (r *runner) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <short-code>",
		Short: "Удалить ссылку вместе с переходами",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Services.LinkService.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("delete short url: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0]) //nolint:errcheck
				return nil
			})
		},
	}
}

func (r *runner) deactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <short-code>",
		Short: "Выключить ссылку без удаления",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Services.LinkService.Deactivate(ctx, args[0]); err != nil {
					return fmt.Errorf("deactivate short url: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", args[0]) //nolint:errcheck
				return nil
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
