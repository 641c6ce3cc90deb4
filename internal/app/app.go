package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"denki-watcher/internal/config"
	"denki-watcher/internal/fetcher"
	"denki-watcher/internal/notify"
	"denki-watcher/internal/service"
	"denki-watcher/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.UsageFetcher {
	return fetcher.NewKraken(fetcher.KrakenOptions{
		BaseURL:   a.Config.Provider.BaseURL,
		Email:     a.Config.Provider.Email,
		Password:  a.Config.Provider.Password,
		Timeout:   a.Config.Provider.RequestTimeout,
		UserAgent: a.Config.Provider.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() notify.Notifier {
	if !a.Config.NotificationsEnabled() {
		a.Logger.Debug().Msg("line channel token or recipient missing; notifications disabled")
		return nil
	}
	cfg := a.Config.Line
	return notify.NewLineNotifier(cfg.ChannelToken, cfg.RecipientID, cfg.APIBase, 10*time.Second, a.Logger)
}

func (a *App) openStore(ctx context.Context) (storage.DailyUsageStore, error) {
	switch a.Config.Database.Driver {
	case "postgres":
		return storage.NewPostgresStore(ctx, storage.PoolSettings{
			DSN:             a.Config.Database.DSN,
			MaxOpenConns:    a.Config.Database.MaxOpenConns,
			MaxIdleConns:    a.Config.Database.MaxIdleConns,
			ConnMaxLifetime: a.Config.Database.ConnMaxLifetime,
		})
	default:
		return storage.NewSQLiteStore(a.Config.Database.Path)
	}
}

func (a *App) newService(f fetcher.UsageFetcher, store storage.DailyUsageStore, notifier notify.Notifier) *service.Service {
	return service.New(a.Config, f, store, notifier, a.Logger)
}

// RunOptions configure single-day processing.
type RunOptions struct {
	Date *time.Time
}

// BackfillOptions configure a range run.
type BackfillOptions struct {
	From time.Time
	To   time.Time
	// Delay overrides the configured inter-day throttle when >= 0.
	Delay time.Duration
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// SummaryOptions configure the billing-cycle summary command.
type SummaryOptions struct {
	Date *time.Time
}

// ExportOptions hold parameters for exporting daily usage history.
type ExportOptions struct {
	From    *time.Time
	To      *time.Time
	PNGPath string
	CSVPath string
}
