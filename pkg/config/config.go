package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"NavPulse/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Monitor struct {
		Funds        []string      `yaml:"funds"`
		Holdings     []string      `yaml:"holdings"`
		Benchmark    string        `yaml:"benchmark"`
		CacheDir     string        `yaml:"cache_dir" default:"fund_data"`
		HolidaysFile string        `yaml:"holidays_file"`
		PoolSize     int           `yaml:"pool_size" default:"5"`
		GrowthWindow int           `yaml:"growth_window_days" default:"30"`
		Interval     time.Duration `yaml:"interval"`
	} `yaml:"monitor"`
	Fetch struct {
		BaseURL      string        `yaml:"base_url"`
		PageSize     int           `yaml:"page_size" default:"20"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		PageDelayMin time.Duration `yaml:"page_delay_min" default:"500ms"`
		PageDelayMax time.Duration `yaml:"page_delay_max" default:"1500ms"`
		RateCapacity float64       `yaml:"rate_capacity" default:"5"`
		RatePerSec   float64       `yaml:"rate_per_sec" default:"2"`
		Retry        struct {
			MaxAttempts int           `yaml:"max_attempts" default:"3"`
			BaseDelay   time.Duration `yaml:"base_delay" default:"2s"`
			MaxDelay    time.Duration `yaml:"max_delay" default:"30s"`
			Jitter      float64       `yaml:"jitter" default:"0.2"`
		} `yaml:"retry"`
	} `yaml:"fetch"`
	Allocator struct {
		Budget float64 `yaml:"budget" default:"10000"`
		TopN   int     `yaml:"top_n" default:"3"`
	} `yaml:"allocator"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"navpulse.results"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"navpulse"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Cache struct {
		ResultTTL time.Duration `yaml:"result_ttl" default:"15m"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"navpulse"`
		} `yaml:"redis"`
	} `yaml:"cache"`
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

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
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

	if v := os.Getenv("NAV_FUNDS"); v != "" {
		c.Monitor.Funds = strings.Split(v, ",")
	}
	if v := os.Getenv("NAV_BENCHMARK"); v != "" {
		c.Monitor.Benchmark = v
	}
	if v := os.Getenv("NAV_BASE_URL"); v != "" {
		c.Fetch.BaseURL = v
	}
	if v := os.Getenv("NAV_CACHE_DIR"); v != "" {
		c.Monitor.CacheDir = v
	}
	c.Monitor.PoolSize = util.ParseIntDefault(os.Getenv("NAV_POOL_SIZE"), c.Monitor.PoolSize)
	c.Allocator.Budget = util.ParseFloatDefault(os.Getenv("NAV_BUDGET"), c.Allocator.Budget)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Monitor.Funds) == 0 {
		return fmt.Errorf("monitor.funds cannot be empty")
	}
	if c.Fetch.BaseURL == "" {
		return fmt.Errorf("fetch.base_url is required")
	}
	if c.Monitor.PoolSize <= 0 {
		return fmt.Errorf("monitor.pool_size must be positive")
	}
	if c.Fetch.Retry.MaxAttempts < 1 || c.Fetch.Retry.MaxAttempts > 5 {
		return fmt.Errorf("fetch.retry.max_attempts must be 1..5, got %d", c.Fetch.Retry.MaxAttempts)
	}
	if c.Fetch.PageDelayMax < c.Fetch.PageDelayMin {
		return fmt.Errorf("fetch.page_delay_max must be >= fetch.page_delay_min")
	}
	if c.Allocator.TopN <= 0 {
		return fmt.Errorf("allocator.top_n must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}
