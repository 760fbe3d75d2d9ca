package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Cleaning pipeline configuration
	Cleaning struct {
		// Path of the raw listings file (CSV or XLSX)
		InputPath string `env:"CLEAN_INPUT_PATH" envDefault:"data/raw_listings.csv"`

		// Path the cleaned CSV is written to
		OutputPath string `env:"CLEAN_OUTPUT_PATH" envDefault:"data/cleaned_listings.csv"`

		// Multiplier applied to the interquartile range when fencing outliers
		IQRMultiplier float64 `env:"CLEAN_IQR_MULTIPLIER" envDefault:"1.5"`
	}

	// Database configuration
	Database struct {
		// Location of the SQLite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/immoeliza.db"`

		// Whether cleaned listings are persisted at all
		Enabled bool `env:"DATABASE_ENABLED" envDefault:"true"`
	}

	// HTTP API configuration
	HTTP struct {
		Port int `env:"HTTP_PORT" envDefault:"5250"`
	}

	// Scheduler configuration
	Schedule struct {
		// Hours between automatic cleaning runs; 0 disables the scheduler
		IntervalHours int `env:"SCHEDULE_INTERVAL_HOURS" envDefault:"24"`

		// Whether a cleaning run is kicked off immediately at startup
		RunOnStartup bool `env:"SCHEDULE_RUN_ON_STARTUP" envDefault:"true"`
	}

	// Telegram notification configuration
	Telegram struct {
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of listings per persisted batch
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Seconds to wait for queue capacity before retrying a push
		MaxBatchWaitTime int `env:"BATCH_WAIT_TIME" envDefault:"30"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	// Logging level: debug, info, warn or error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
