package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"denki-watcher/internal/logging"
	"denki-watcher/internal/pricing"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Provider ProviderConfig `mapstructure:"provider"`
	Tariff   TariffConfig   `mapstructure:"tariff"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Line     LineConfig     `mapstructure:"line"`
	Runner   RunnerConfig   `mapstructure:"runner"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig selects and tunes the persistence backend.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// ProviderConfig covers access to the utility's GraphQL API.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Email          string        `mapstructure:"email"`
	Password       string        `mapstructure:"password"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// TariffConfig encodes the tiered rate schedule. Defaults reproduce the one
// fixed schedule this tool was written against; override on tariff changes.
type TariffConfig struct {
	BaseCharge float64 `mapstructure:"base_charge"`
	Tier1Limit float64 `mapstructure:"tier1_limit"`
	Tier2Limit float64 `mapstructure:"tier2_limit"`
	Rate1      float64 `mapstructure:"rate1"`
	Rate2      float64 `mapstructure:"rate2"`
	Rate3      float64 `mapstructure:"rate3"`
}

// Schedule converts the configured floats into the decimal rate schedule
// the pricing engine consumes.
func (t TariffConfig) Schedule() pricing.Tariff {
	return pricing.Tariff{
		BaseCharge: decimal.NewFromFloat(t.BaseCharge),
		Tier1Limit: decimal.NewFromFloat(t.Tier1Limit),
		Tier2Limit: decimal.NewFromFloat(t.Tier2Limit),
		Rate1:      decimal.NewFromFloat(t.Rate1),
		Rate2:      decimal.NewFromFloat(t.Rate2),
		Rate3:      decimal.NewFromFloat(t.Rate3),
	}
}

// BillingConfig governs the monthly billing cycle.
type BillingConfig struct {
	CycleStartDay int `mapstructure:"cycle_start_day"`
}

// LineConfig 描述 LINE 通知参数。Both token and recipient must be set for
// notifications to be enabled.
type LineConfig struct {
	ChannelToken string `mapstructure:"channel_token"`
	RecipientID  string `mapstructure:"recipient_id"`
	APIBase      string `mapstructure:"api_base"`
}

// RunnerConfig shapes backfill pacing against the upstream API.
type RunnerConfig struct {
	DayDelay time.Duration `mapstructure:"day_delay"`
}

// ScheduleConfig governs the serve daemon.
type ScheduleConfig struct {
	RunAt        string        `mapstructure:"run_at"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DENKIWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys without defaults are invisible to AutomaticEnv; secrets must be
	// bound explicitly or env-only deployments lose them
	for _, key := range []string{
		"provider.email",
		"provider.password",
		"line.channel_token",
		"line.recipient_id",
		"database.dsn",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "denkiwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "denkiwatcher.db")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("provider.base_url", "https://api.oejp-kraken.energy/v1/graphql")
	v.SetDefault("provider.request_timeout", "15s")
	v.SetDefault("provider.user_agent", "denkiwatcher/1.0")

	tariff := pricing.Default()
	v.SetDefault("tariff.base_charge", tariff.BaseCharge.InexactFloat64())
	v.SetDefault("tariff.tier1_limit", tariff.Tier1Limit.InexactFloat64())
	v.SetDefault("tariff.tier2_limit", tariff.Tier2Limit.InexactFloat64())
	v.SetDefault("tariff.rate1", tariff.Rate1.InexactFloat64())
	v.SetDefault("tariff.rate2", tariff.Rate2.InexactFloat64())
	v.SetDefault("tariff.rate3", tariff.Rate3.InexactFloat64())

	v.SetDefault("billing.cycle_start_day", 23)

	v.SetDefault("line.api_base", "https://api.line.me")

	v.SetDefault("runner.day_delay", "5s")

	v.SetDefault("schedule.run_at", "08:00")
	v.SetDefault("schedule.startup_delay", "0s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn 必须配置 (postgres driver)")
	}
	if c.Billing.CycleStartDay < 1 || c.Billing.CycleStartDay > 28 {
		return fmt.Errorf("billing.cycle_start_day must be within 1..28")
	}
	if c.Runner.DayDelay < 0 {
		return fmt.Errorf("runner.day_delay cannot be negative")
	}
	if err := c.Tariff.Schedule().Validate(); err != nil {
		return err
	}
	if _, err := parseRunAt(c.Schedule.RunAt); err != nil {
		return err
	}
	return nil
}

// NotificationsEnabled reports whether LINE delivery is fully configured.
// Either value missing silently disables notification only.
func (c *Config) NotificationsEnabled() bool {
	return c.Line.ChannelToken != "" && c.Line.RecipientID != ""
}

// RequireProviderCredentials is the fatal counterpart for commands that
// must talk to the provider.
func (c *Config) RequireProviderCredentials() error {
	if c.Provider.Email == "" || c.Provider.Password == "" {
		return fmt.Errorf("provider.email and provider.password are required")
	}
	return nil
}

// RunAtClock parses schedule.run_at into hour and minute.
func (c *Config) RunAtClock() (hour, minute int) {
	clock, _ := parseRunAt(c.Schedule.RunAt)
	return clock[0], clock[1]
}

func parseRunAt(value string) ([2]int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return [2]int{}, fmt.Errorf("schedule.run_at must be HH:MM, got %q", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return [2]int{}, fmt.Errorf("schedule.run_at out of range: %q", value)
	}
	return [2]int{hour, minute}, nil
}
