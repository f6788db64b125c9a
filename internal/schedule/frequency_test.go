package schedule

import (
	"errors"
	"testing"
)

func TestResolve_SupportedCodes(t *testing.T) {
	t.Parallel()

	for _, code := range Frequencies() {
		code := code
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()

			def, err := Resolve(code)
			if err != nil {
				t.Fatalf("Resolve(%s) returned error: %v", code, err)
			}
			if def.Code != code {
				t.Fatalf("expected code %s, got %s", code, def.Code)
			}
			if def.Label == "" {
				t.Fatalf("expected non-empty label for %s", code)
			}
			if code == FrequencyOneTime {
				if !def.OneTime() {
					t.Fatalf("expected %s to be one-time", code)
				}
				if def.IntervalDays() != 0 {
					t.Fatalf("one-time interval must be zero, got %d", def.IntervalDays())
				}
				return
			}
			if def.IntervalDays() <= 0 {
				t.Fatalf("expected positive interval for %s, got %d", code, def.IntervalDays())
			}
			for _, step := range def.Steps() {
				if step <= 0 {
					t.Fatalf("expected positive steps for %s, got %v", code, def.Steps())
				}
			}
		})
	}
}

func TestResolve_UnknownCodeFailsFast(t *testing.T) {
	t.Parallel()

	// Unmapped codes must never flow through unresolved.
	_, err := Resolve(Frequency("SEVEN_TIMES_A_WEEK"))
	if !errors.Is(err, ErrUnsupportedFrequency) {
		t.Fatalf("expected ErrUnsupportedFrequency, got %v", err)
	}
}

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Frequency
	}{
		{"weekly", FrequencyWeekly},
		{"Weekly", FrequencyWeekly},
		{"once a week", FrequencyWeekly},
		{"twice a week", FrequencyTwiceWeekly},
		{"biweekly", FrequencyBiweekly},
		{"every other week", FrequencyBiweekly},
		{"every 2 weeks", FrequencyBiweekly},
		{"every three weeks", FrequencyEveryThreeWeeks},
		{"every 3 weeks", FrequencyEveryThreeWeeks},
		{"monthly", FrequencyMonthly},
		{"one-time", FrequencyOneTime},
		{"ONETIME", FrequencyOneTime},
		{"  once  ", FrequencyOneTime},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFrequency(tc.raw)
			if err != nil {
				t.Fatalf("ParseFrequency(%q) returned error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseFrequency(%q) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseFrequency_Unknown(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "fortnightly-ish", "whenever", "7x week"} {
		if _, err := ParseFrequency(raw); !errors.Is(err, ErrUnsupportedFrequency) {
			t.Fatalf("ParseFrequency(%q) expected ErrUnsupportedFrequency, got %v", raw, err)
		}
	}
}
