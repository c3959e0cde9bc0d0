package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds everything the process reads from the environment.
// Google Sheets settings are optional: when GOOGLE_CREDENTIALS or
// GOOGLE_SPREADSHEET_ID is empty, mirroring is disabled.
type Config struct {
	BotToken        string  `env:"TELEGRAM_BOT_TOKEN,required"`
	DatabasePath    string  `env:"DATABASE_PATH" envDefault:"./database.sqlite"`
	ChannelUsername string  `env:"CHANNEL_USERNAME" envDefault:"QuadroAgency"`
	AdminIDs        []int64 `env:"ADMIN_TELEGRAM_IDS" envSeparator:","`
	ListenAddr      string  `env:"LISTEN_ADDR" envDefault:":3000"`
	RulesURL        string  `env:"RULES_URL" envDefault:"https://w3b-belarus-rbiobym.gamma.site/"`

	GoogleCredentials string `env:"GOOGLE_CREDENTIALS"`
	SpreadsheetID     string `env:"GOOGLE_SPREADSHEET_ID"`

	Debug bool `env:"BOT_DEBUG" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
