package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"FIELDOPS_HTTP_PORT",
			"FIELDOPS_SQLITE_DSN",
			"FIELDOPS_SESSION_TTL",
			"FIELDOPS_HORIZON_DAYS",
			"FIELDOPS_TOPUP_SCHEDULE",
			"FIELDOPS_QUOTE_RATE_PER_MIN",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("FIELDOPS_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:fieldops.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.HorizonDays != 14 {
			t.Fatalf("expected default horizon of 14 days, got %d", cfg.HorizonDays)
		}
		if cfg.TopUpSchedule != "17 3 * * *" {
			t.Fatalf("unexpected default top-up schedule: %q", cfg.TopUpSchedule)
		}
		if cfg.QuoteRatePerMin != 10 {
			t.Fatalf("expected default quote rate of 10 per minute, got %d", cfg.QuoteRatePerMin)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"FIELDOPS_SESSION_SECRET",
			"FIELDOPS_HTTP_PORT",
			"FIELDOPS_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: FIELDOPS_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("FIELDOPS_SESSION_SECRET", "secret-value")
		t.Setenv("FIELDOPS_HTTP_PORT", "9090")
		t.Setenv("FIELDOPS_SQLITE_DSN", "file:/tmp/fieldops.db")
		t.Setenv("FIELDOPS_SESSION_TTL", "12h")
		t.Setenv("FIELDOPS_HORIZON_DAYS", "30")
		t.Setenv("FIELDOPS_QUOTE_RATE_PER_MIN", "25")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.HorizonDays != 30 {
			t.Fatalf("expected horizon of 30 days, got %d", cfg.HorizonDays)
		}
		if cfg.QuoteRatePerMin != 25 {
			t.Fatalf("expected quote rate 25 per minute, got %d", cfg.QuoteRatePerMin)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/fieldops.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
	})

	t.Run("rejects malformed cron schedules", func(t *testing.T) {
		t.Setenv("FIELDOPS_SESSION_SECRET", "secret-value")
		t.Setenv("FIELDOPS_TOPUP_SCHEDULE", "every day at dawn")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed cron schedule")
		}
		expected := "environment variables have invalid values: FIELDOPS_TOPUP_SCHEDULE"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
