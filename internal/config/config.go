package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/simonvc/ledgercore/internal/ledger"
)

// Config is read from LEDGER_* environment variables, after loading a .env
// file from the working directory if one exists.
type Config struct {
	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int

	Addr   string
	Server string

	LogLevel  string
	LogFormat string

	BaseCurrency   string
	SummaryEntries int

	KafkaBrokers []string
	KafkaTopic   string
}

func Default() Config {
	return Config{
		DBDriver:       "sqlite",
		DBDSN:          "ledger.db",
		Addr:           ":8888",
		Server:         "http://localhost:8888",
		LogLevel:       "info",
		LogFormat:      "json",
		BaseCurrency:   "USD",
		SummaryEntries: 20,
		KafkaTopic:     "ledger.journal_posted",
	}
}

func Load() (Config, error) {
	godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, keeping defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: expected a non-negative integer, got %q", key, v)
		}
		*dst = n
		return nil
	}

	str("LEDGER_DB_DRIVER", &cfg.DBDriver)
	str("LEDGER_DB_DSN", &cfg.DBDSN)
	str("LEDGER_ADDR", &cfg.Addr)
	str("LEDGER_SERVER", &cfg.Server)
	str("LEDGER_LOG_LEVEL", &cfg.LogLevel)
	str("LEDGER_LOG_FORMAT", &cfg.LogFormat)
	str("LEDGER_BASE_CURRENCY", &cfg.BaseCurrency)
	str("LEDGER_KAFKA_TOPIC", &cfg.KafkaTopic)

	if err := num("LEDGER_SUMMARY_ENTRIES", &cfg.SummaryEntries); err != nil {
		return cfg, err
	}
	if err := num("LEDGER_DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns); err != nil {
		return cfg, err
	}

	if v := getenv("LEDGER_KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	cur, err := ledger.NormalizeCurrency(cfg.BaseCurrency)
	if err != nil {
		return cfg, fmt.Errorf("LEDGER_BASE_CURRENCY: %w (supported: %s)", err, strings.Join(ledger.CurrencyCodes(), ", "))
	}
	cfg.BaseCurrency = cur

	return cfg, nil
}
