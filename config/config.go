package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はプロセス全体の設定。すべて環境変数から読む
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"review_tasks.db"`

	// CronSecret は /api/cron/* の Bearer トークン
	CronSecret string `env:"CRON_SECRET" envDefault:"default-cron-secret"`

	SchedulerEnabled    bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	DailyAssignmentTime string        `env:"DAILY_ASSIGNMENT_TIME" envDefault:"09:00"`
	Timezone            string        `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
	SLASweepInterval    time.Duration `env:"SLA_SWEEP_INTERVAL" envDefault:"1h"`

	SlackBotToken  string `env:"SLACK_BOT_TOKEN"`
	SlackChannelID string `env:"SLACK_CHANNEL_ID"`
	SlackAPIURL    string `env:"SLACK_API_URL"`
}

// Load は .env があれば読み込んでから環境変数を解析する
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
		log.Println(".env file not found, using environment variables only")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location はスケジュールに使うタイムゾーンを返す
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlackEnabled は通知に必要なトークンが設定されているか
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != ""
}
