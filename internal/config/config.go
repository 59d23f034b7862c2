package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
	Seed            bool
}

type AuthConfig struct {
	TokenSecret string
}

type LedgerConfig struct {
	DepositDefault decimal.Decimal
	DepositRate    decimal.Decimal
}

type ReportConfig struct {
	DefaultLimit int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
	Report      ReportConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("HTTP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
			Seed:            v.GetBool("DB_SEED"),
		},
		Auth: AuthConfig{
			TokenSecret: v.GetString("AUTH_TOKEN_SECRET"),
		},
		Report: ReportConfig{
			DefaultLimit: v.GetInt("REPORT_DEFAULT_LIMIT"),
		},
	}

	var err error
	if cfg.Ledger.DepositDefault, err = parseDecimal(v.GetString("LEDGER_DEPOSIT_DEFAULT"), "10"); err != nil {
		return nil, fmt.Errorf("LEDGER_DEPOSIT_DEFAULT: %w", err)
	}
	if cfg.Ledger.DepositRate, err = parseDecimal(v.GetString("LEDGER_DEPOSIT_RATE"), "0.25"); err != nil {
		return nil, fmt.Errorf("LEDGER_DEPOSIT_RATE: %w", err)
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3001
	}
	if cfg.Report.DefaultLimit == 0 {
		cfg.Report.DefaultLimit = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.DB.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(cfg.DB.ConnMaxLifetime); err != nil {
			return fmt.Errorf("DB_CONN_MAX_LIFETIME is invalid: %w", err)
		}
	}
	if !cfg.Ledger.DepositDefault.IsPositive() {
		return fmt.Errorf("LEDGER_DEPOSIT_DEFAULT must be positive")
	}
	if !cfg.Ledger.DepositRate.IsPositive() || cfg.Ledger.DepositRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("LEDGER_DEPOSIT_RATE must be in (0, 1]")
	}
	if cfg.Report.DefaultLimit < 0 {
		return fmt.Errorf("REPORT_DEFAULT_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func parseDecimal(raw, fallback string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	return decimal.NewFromString(raw)
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
