package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Alerts struct {
		Backend  string        `yaml:"backend"` // log, kafka, clickhouse
		Cooldown time.Duration `yaml:"cooldown"`
		Recent   int           `yaml:"recent"` // in-memory ring size
	} `yaml:"alerts"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		ErrorTopic   string   `yaml:"error_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Binance struct {
		SpotStreamHost    string        `yaml:"spot_stream_host"`
		FuturesStreamHost string        `yaml:"futures_stream_host"`
		SpotRestURL       string        `yaml:"spot_rest_url"`
		FuturesRestURL    string        `yaml:"futures_rest_url"`
		Interval          string        `yaml:"interval"`
		HistoryLimit      int           `yaml:"history_limit"`
		ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
		PingInterval      time.Duration `yaml:"ping_interval"`
		RequestTimeout    time.Duration `yaml:"request_timeout"`
	} `yaml:"binance"`
	Monitor struct {
		TargetSymbol    string        `yaml:"target_symbol"`    // futures market
		ReferenceSymbol string        `yaml:"reference_symbol"` // spot market
		MeanWindow      int           `yaml:"mean_window"`
		ThresholdPct    float64       `yaml:"threshold_pct"`
		PollInterval    time.Duration `yaml:"poll_interval"`
	} `yaml:"monitor"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOL_TARGET"); v != "" {
		c.Monitor.TargetSymbol = strings.ToLower(v)
	}
	if v := os.Getenv("SYMBOL_REFERENCE"); v != "" {
		c.Monitor.ReferenceSymbol = strings.ToLower(v)
	}
	if v := os.Getenv("ALERT_BACKEND"); v != "" {
		c.Alerts.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Alerts.Backend {
	case "log", "kafka", "clickhouse":
	default:
		return fmt.Errorf("alerts.backend must be 'log', 'kafka' or 'clickhouse', got '%s'", c.Alerts.Backend)
	}
	if c.Alerts.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required for the kafka alert backend")
	}
	if c.Alerts.Backend == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required for the clickhouse alert backend")
	}
	if c.Monitor.TargetSymbol == "" || c.Monitor.ReferenceSymbol == "" {
		return fmt.Errorf("monitor.target_symbol and monitor.reference_symbol are required")
	}
	if c.Monitor.TargetSymbol == c.Monitor.ReferenceSymbol {
		return fmt.Errorf("monitor symbols must differ")
	}
	if c.Monitor.ThresholdPct <= 0 {
		return fmt.Errorf("monitor.threshold_pct must be positive")
	}
	if c.Binance.Interval == "" {
		return fmt.Errorf("binance.interval is required")
	}
	if !validInterval(c.Binance.Interval) {
		return fmt.Errorf("binance.interval '%s' is not a valid kline interval", c.Binance.Interval)
	}
	return nil
}

var klineIntervals = map[string]struct{}{
	"1s": {}, "1m": {}, "3m": {}, "5m": {}, "15m": {}, "30m": {},
	"1h": {}, "2h": {}, "4h": {}, "6h": {}, "8h": {}, "12h": {},
	"1d": {}, "3d": {}, "1w": {}, "1M": {},
}

func validInterval(s string) bool {
	_, ok := klineIntervals[s]
	return ok
}
