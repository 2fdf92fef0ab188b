package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Scheduler struct {
		DefaultTimezone    string `env:"SCHEDULER_DEFAULT_TIMEZONE"`
		DefaultPostingTime string `env:"SCHEDULER_DEFAULT_POSTING_TIME" env-default:"09:00"`
		WindowPadDays      int    `env:"SCHEDULER_WINDOW_PAD_DAYS" env-default:"10"`
		WindowSize         int    `env:"SCHEDULER_WINDOW_SIZE" env-default:"100"`
		MinLeadMinutes     int    `env:"SCHEDULER_MIN_LEAD_MINUTES" env-default:"1"`
	}
	Publisher struct {
		IntervalSeconds int `env:"PUBLISHER_INTERVAL_SECONDS" env-default:"60"`
		RatePerMinute   int `env:"PUBLISHER_RATE_PER_MINUTE" env-default:"10"`
	}
	Dismiss struct {
		UndoSeconds int `env:"DISMISS_UNDO_SECONDS" env-default:"3"`
	}
	RateLimit struct {
		Requests int `env:"RATE_LIMIT_REQUESTS" env-default:"2"`
		PerSecs  int `env:"RATE_LIMIT_PER_SECONDS" env-default:"1"`
		Burst    int `env:"RATE_LIMIT_BURST" env-default:"10"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns a lib/pq style connection string for goose migrations.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}
