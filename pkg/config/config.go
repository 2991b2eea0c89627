package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	xutil "VolScan/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MinWindowBars is the smallest rolling window the scanner accepts.
const MinWindowBars = 50

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Logger      struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logger"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"1s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Scanner struct {
		Interval        time.Duration `yaml:"interval" default:"60s" validate:"gt=0"`
		WindowDays      int           `yaml:"window_days" default:"20" validate:"gte=1"`
		BarsPerDay      int           `yaml:"bars_per_day" default:"78" validate:"gte=1"`
		MinBars         int           `yaml:"min_bars" default:"100" validate:"gte=2"`
		ZThreshold      float64       `yaml:"z_threshold" default:"2.0" validate:"gt=0"`
		Cooldown        time.Duration `yaml:"cooldown" default:"1h" validate:"gt=0"`
		BarInterval     string        `yaml:"bar_interval" default:"5m" validate:"required"`
		Lookback        string        `yaml:"lookback" default:"5d" validate:"required"`
		UniverseRefresh time.Duration `yaml:"universe_refresh" default:"24h"`
		AlertHistory    int           `yaml:"alert_history" default:"500" validate:"gte=1"`
	} `yaml:"scanner"`
	Fetcher struct {
		BatchSize         int           `yaml:"batch_size" default:"50" validate:"gte=1"`
		MaxAttempts       int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
		BaseDelay         time.Duration `yaml:"base_delay" default:"2s" validate:"gt=0"`
		MaxDelay          time.Duration `yaml:"max_delay" default:"30s" validate:"gt=0"`
		BatchDelay        time.Duration `yaml:"batch_delay" default:"1s"`
		RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
		CacheTTL          time.Duration `yaml:"cache_ttl" default:"45s"`
	} `yaml:"fetcher"`
	MarketData struct {
		BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) VolScan/1.0"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"market_data"`
	Universe struct {
		File          string        `yaml:"file" default:"nasdaq_tickers.csv"`
		RemoteEnabled bool          `yaml:"remote_enabled" default:"true"`
		RemoteURL     string        `yaml:"remote_url" default:"https://api.nasdaq.com/api/screener/stocks"`
		StaticEnabled bool          `yaml:"static_enabled" default:"true"`
		Timeout       time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"universe"`
	Telegram struct {
		Token       string  `yaml:"token"`
		ChatID      string  `yaml:"chat_id"`
		APIEndpoint string  `yaml:"api_endpoint"`
		Rate        float64 `yaml:"rate" default:"1" validate:"gt=0"`
		Burst       int     `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"telegram"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"volscan"`
		TTL      time.Duration `yaml:"ttl" default:"2h"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled         bool     `yaml:"enabled"`
		Brokers         []string `yaml:"brokers"`
		Topic           string   `yaml:"topic" default:"volscan.alerts"`
		RequiredAcks    int      `yaml:"required_acks" default:"-1"`
		Compression     string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		AutoCreateTopic bool     `yaml:"auto_create_topic"`
		Producer        struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"volscan"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		Table       string        `yaml:"table" default:"scan_results"`
		UseHTTP     bool          `yaml:"use_http"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Postgres struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
		Table   string `yaml:"table" default:"alert_log"`
	} `yaml:"postgres"`
	CSVExport struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir" default:"reports"`
	} `yaml:"csv_export"`
}

// WindowBars is the rolling window size in returns.
func (c *Config) WindowBars() int {
	return c.Scanner.WindowDays * c.Scanner.BarsPerDay
}

// TelegramConfigured reports whether both bot credentials are present.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, then an optional .env file, then
// overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &c, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		c.Scanner.Interval = time.Duration(xutil.ParseIntDefault(v, int(c.Scanner.Interval/time.Second))) * time.Second
	}
	if v := os.Getenv("VOLATILITY_WINDOW_DAYS"); v != "" {
		c.Scanner.WindowDays = xutil.ParseIntDefault(v, c.Scanner.WindowDays)
	}
	if v := os.Getenv("MIN_BARS_REQUIRED"); v != "" {
		c.Scanner.MinBars = xutil.ParseIntDefault(v, c.Scanner.MinBars)
	}
	if v := os.Getenv("Z_SCORE_THRESHOLD"); v != "" {
		c.Scanner.ZThreshold = xutil.ParseFloatDefault(v, c.Scanner.ZThreshold)
	}
	if v := os.Getenv("ALERT_COOLDOWN_HOURS"); v != "" {
		hours := xutil.ParseFloatDefault(v, c.Scanner.Cooldown.Hours())
		c.Scanner.Cooldown = time.Duration(hours * float64(time.Hour))
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		c.Fetcher.BatchSize = xutil.ParseIntDefault(v, c.Fetcher.BatchSize)
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		c.Fetcher.MaxAttempts = xutil.ParseIntDefault(v, c.Fetcher.MaxAttempts)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TICKER_FILE"); v != "" {
		c.Universe.File = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Enabled = true
		c.Redis.Host = host
		if ok {
			c.Redis.Port = xutil.ParseIntDefault(port, c.Redis.Port)
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Enabled = true
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.Enabled = true
		c.Postgres.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = strings.ToLower(v)
	}
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if w := c.WindowBars(); w < MinWindowBars {
		return fmt.Errorf("volatility window must be at least %d bars, got %d", MinWindowBars, w)
	}
	if c.Fetcher.MaxDelay < c.Fetcher.BaseDelay {
		return fmt.Errorf("fetcher.max_delay must not be below fetcher.base_delay")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Postgres.Enabled && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required when postgres is enabled")
	}
	if !c.Universe.StaticEnabled && !c.Universe.RemoteEnabled && c.Universe.File == "" {
		return fmt.Errorf("at least one ticker universe source must be configured")
	}
	return nil
}
