package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"checkout-service/database"

	"github.com/joho/godotenv"
)

// Config is the service's environment configuration.
type Config struct {
	Port     string
	Postgres database.PostgresConfig

	KafkaBrokers    []string
	ComplianceTopic string
	SNSTopicArn     string

	// DefaultTaxRate / DefaultExciseTaxRate apply when a dispensary has
	// no override in TaxRateOverrides. Decimal strings, e.g. "0.08875".
	DefaultTaxRate       string
	DefaultExciseTaxRate string
	TaxRateOverrides     map[string]struct{ Tax, Excise string }

	AuditInventoryAdjustments bool
	OutboxPollInterval        time.Duration
	OutboxBatchSize           int
}

// LoadConfig reads configuration from the environment (and .env when
// present).
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8084"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		KafkaBrokers:              strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ComplianceTopic:           getEnv("COMPLIANCE_TOPIC", "compliance.events"),
		SNSTopicArn:               os.Getenv("COMPLIANCE_SNS_TOPIC_ARN"),
		DefaultTaxRate:            getEnv("TAX_RATE", "0.08875"),
		DefaultExciseTaxRate:      getEnv("EXCISE_TAX_RATE", "0.09"),
		AuditInventoryAdjustments: getEnv("AUDIT_INVENTORY_ADJUSTMENTS", "false") == "true",
		OutboxPollInterval:        5 * time.Second,
		OutboxBatchSize:           50,
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("database config incomplete")
	}

	if interval := os.Getenv("OUTBOX_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("OUTBOX_POLL_INTERVAL: %w", err)
		}
		cfg.OutboxPollInterval = d
	}

	// Per-dispensary overrides as JSON, e.g.
	// {"<dispensary-uuid>":{"tax":"0.06","excise":"0.10"}}
	if raw := os.Getenv("TAX_RATE_OVERRIDES"); raw != "" {
		var parsed map[string]struct {
			Tax    string `json:"tax"`
			Excise string `json:"excise"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("TAX_RATE_OVERRIDES: %w", err)
		}
		cfg.TaxRateOverrides = make(map[string]struct{ Tax, Excise string }, len(parsed))
		for k, v := range parsed {
			cfg.TaxRateOverrides[k] = struct{ Tax, Excise string }{Tax: v.Tax, Excise: v.Excise}
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
