package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	HTTPPort    int
	DB          DatabaseConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	ServiceName string

	// PaymentCooldown is the duplicate-submission suppression window.
	PaymentCooldown time.Duration
	// SweepInterval is how often the background arrears sweep runs.
	SweepInterval time.Duration
	// PenaltyAnnualRate is the fractional annual penalty rate on overdue
	// principal; zero disables penalty accrual.
	PenaltyAnnualRate decimal.Decimal
	// ProvisionRates is the category -> fractional rate table, parsed from
	// PROVISION_RATES ("NORMAL=0.01,WATCH=0.05,...") so the regulatory
	// policy stays deployment configuration.
	ProvisionRates map[string]decimal.Decimal
}

func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8093),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "servicing"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "loan_servicing"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "servicing-events"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		ServiceName:       "loan-servicing-engine",
		PaymentCooldown:   time.Duration(getEnvInt("PAYMENT_COOLDOWN_SECONDS", 30)) * time.Second,
		SweepInterval:     time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 1440)) * time.Minute,
		PenaltyAnnualRate: getEnvDecimal("PENALTY_ANNUAL_RATE", "0"),
		ProvisionRates:    parseRates(getEnv("PROVISION_RATES", defaultProvisionRates)),
	}
}

// defaultProvisionRates is a deployment default; production overrides it with
// the regulator's published table via PROVISION_RATES.
const defaultProvisionRates = "NORMAL=0.01,WATCH=0.05,SUBSTANDARD=0.25,DOUBTFUL=0.5,LOSS=1"

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func parseRates(raw string) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		rate, err := decimal.NewFromString(parts[1])
		if err != nil {
			continue
		}
		rates[strings.ToUpper(parts[0])] = rate
	}
	return rates
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(fallback)
	return d
}
