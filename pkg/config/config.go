// Package config loads service settings from an optional YAML file, a .env
// file and SIM_ prefixed environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SIM_DB_DSN.
const EnvPrefix = "SIM"

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Scraper    ScraperConfig    `mapstructure:"scraper"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig configures the Postgres pool. An empty DSN means no database; the
// services then keep designs and scenarios in memory.
type DBConfig struct {
	DSN            string        `mapstructure:"dsn"`
	MaxConns       int32         `mapstructure:"max_conns"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	MigrateOnStart bool          `mapstructure:"migrate_on_start"`
}

type SimulationConfig struct {
	TotalSubscribers int64           `mapstructure:"total_subscribers"`
	AvgARPU          float64         `mapstructure:"avg_arpu"`
	Benchmark        BenchmarkConfig `mapstructure:"benchmark"`
}

type BenchmarkConfig struct {
	Price          float64 `mapstructure:"price" json:"price"`
	QualityPremium float64 `mapstructure:"quality_premium" json:"quality_premium"`
	DataGB         float64 `mapstructure:"data_gb" json:"data_gb"`
}

type ScraperConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Load reads path (YAML) unless envOnly is set, then applies environment
// overrides. A missing file is not an error. DATABASE_URL is used when no DSN
// is configured.
func Load(path string, envOnly bool) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if !envOnly && path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// Default returns the configuration Load produces with no file and no
// environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.query_timeout", "5s")
	v.SetDefault("db.migrate_on_start", true)
	v.SetDefault("simulation.total_subscribers", 1000000)
	v.SetDefault("simulation.avg_arpu", 50000)
	v.SetDefault("simulation.benchmark.price", 30000)
	v.SetDefault("simulation.benchmark.quality_premium", 0.15)
	v.SetDefault("simulation.benchmark.data_gb", 50)
	v.SetDefault("scraper.timeout", "10s")
	v.SetDefault("scraper.user_agent", "rateplan-sim/1.0")
}
