package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config captures environment driven configuration values for the field
// service platform.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	SessionSecret   string
	SessionTTL      time.Duration
	HorizonDays     int
	TopUpSchedule   string
	QuoteRatePerMin int
}

// Load parses configuration values from the current process environment.
// A .env file in the working directory is read first when present so local
// development does not need exported variables.
//
// The loader applies defaults for optional fields while validating required
// values and reporting every problem in a single error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:fieldops.db?_foreign_keys=on",
		SessionTTL:      24 * time.Hour,
		HorizonDays:     14,
		TopUpSchedule:   "17 3 * * *",
		QuoteRatePerMin: 10,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("FIELDOPS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "FIELDOPS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("FIELDOPS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("FIELDOPS_SESSION_SECRET")); secret == "" {
		missing = append(missing, "FIELDOPS_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("FIELDOPS_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "FIELDOPS_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if horizonValue := strings.TrimSpace(os.Getenv("FIELDOPS_HORIZON_DAYS")); horizonValue != "" {
		horizon, err := strconv.Atoi(horizonValue)
		if err != nil || horizon <= 0 {
			invalid = append(invalid, "FIELDOPS_HORIZON_DAYS")
		} else {
			cfg.HorizonDays = horizon
		}
	}

	if spec := strings.TrimSpace(os.Getenv("FIELDOPS_TOPUP_SCHEDULE")); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			invalid = append(invalid, "FIELDOPS_TOPUP_SCHEDULE")
		} else {
			cfg.TopUpSchedule = spec
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("FIELDOPS_QUOTE_RATE_PER_MIN")); rateValue != "" {
		perMinute, err := strconv.Atoi(rateValue)
		if err != nil || perMinute <= 0 {
			invalid = append(invalid, "FIELDOPS_QUOTE_RATE_PER_MIN")
		} else {
			cfg.QuoteRatePerMin = perMinute
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
