package schedule

import (
	"errors"
	"strings"
)

// Frequency identifies a supported service cadence.
type Frequency string

const (
	// FrequencyWeekly generates one visit every seven days.
	FrequencyWeekly Frequency = "WEEKLY"
	// FrequencyTwiceWeekly generates two visits per week on a 3/4 day split.
	FrequencyTwiceWeekly Frequency = "TWICE_WEEKLY"
	// FrequencyBiweekly generates one visit every fourteen days.
	FrequencyBiweekly Frequency = "BIWEEKLY"
	// FrequencyEveryThreeWeeks generates one visit every twenty-one days.
	FrequencyEveryThreeWeeks Frequency = "EVERY_THREE_WEEKS"
	// FrequencyMonthly generates one visit every twenty-eight days.
	FrequencyMonthly Frequency = "MONTHLY"
	// FrequencyOneTime generates exactly one visit on the start date.
	FrequencyOneTime Frequency = "ONETIME"
)

// ErrUnsupportedFrequency indicates a cadence code outside the known set.
// Callers must handle it explicitly; there is no fallback cadence.
var ErrUnsupportedFrequency = errors.New("schedule: unsupported frequency")

// Definition describes how a frequency expands into concrete visit dates.
// Steps is the repeating day-step cycle applied after the first occurrence;
// a one-time definition has no steps and must never be iterated.
type Definition struct {
	Code  Frequency
	Label string
	steps []int
}

// IntervalDays reports the primary advance interval in days. It is zero for
// one-time definitions.
func (d Definition) IntervalDays() int {
	if len(d.steps) == 0 {
		return 0
	}
	return d.steps[0]
}

// Steps returns a copy of the day-step cycle.
func (d Definition) Steps() []int {
	out := make([]int, len(d.steps))
	copy(out, d.steps)
	return out
}

// OneTime reports whether the definition produces a single occurrence.
func (d Definition) OneTime() bool {
	return d.Code == FrequencyOneTime
}

// definitions is the immutable cadence lookup table. It is the single place
// frequency semantics are defined; handlers and services resolve through it
// rather than keeping their own maps.
var definitions = map[Frequency]Definition{
	FrequencyWeekly:          {Code: FrequencyWeekly, Label: "Weekly", steps: []int{7}},
	FrequencyTwiceWeekly:     {Code: FrequencyTwiceWeekly, Label: "Twice a week", steps: []int{3, 4}},
	FrequencyBiweekly:        {Code: FrequencyBiweekly, Label: "Every other week", steps: []int{14}},
	FrequencyEveryThreeWeeks: {Code: FrequencyEveryThreeWeeks, Label: "Every three weeks", steps: []int{21}},
	FrequencyMonthly:         {Code: FrequencyMonthly, Label: "Monthly", steps: []int{28}},
	FrequencyOneTime:         {Code: FrequencyOneTime, Label: "One-time cleanup"},
}

// Resolve maps a frequency code to its definition. Unknown codes fail with
// ErrUnsupportedFrequency rather than defaulting.
func Resolve(code Frequency) (Definition, error) {
	def, ok := definitions[code]
	if !ok {
		return Definition{}, ErrUnsupportedFrequency
	}
	return def, nil
}

// ParseFrequency normalizes the human-facing cadence labels accepted at the
// onboarding boundary ("weekly", "every 2 weeks", "one-time", ...) into a
// Frequency code. Unrecognized input fails with ErrUnsupportedFrequency.
func ParseFrequency(raw string) (Frequency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	switch normalized {
	case "WEEKLY", "EVERY_WEEK", "ONCE_A_WEEK":
		return FrequencyWeekly, nil
	case "TWICE_WEEKLY", "TWICE_A_WEEK", "2X_WEEK":
		return FrequencyTwiceWeekly, nil
	case "BIWEEKLY", "BI_WEEKLY", "EVERY_OTHER_WEEK", "EVERY_2_WEEKS", "EVERY_TWO_WEEKS":
		return FrequencyBiweekly, nil
	case "EVERY_THREE_WEEKS", "EVERY_3_WEEKS":
		return FrequencyEveryThreeWeeks, nil
	case "MONTHLY", "EVERY_4_WEEKS", "EVERY_FOUR_WEEKS":
		return FrequencyMonthly, nil
	case "ONETIME", "ONE_TIME", "SINGLE", "ONCE":
		return FrequencyOneTime, nil
	}
	return "", ErrUnsupportedFrequency
}

// Frequencies lists the supported cadence codes in a stable order, primarily
// for boundary validation messages and quote-form option lists.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyWeekly,
		FrequencyTwiceWeekly,
		FrequencyBiweekly,
		FrequencyEveryThreeWeeks,
		FrequencyMonthly,
		FrequencyOneTime,
	}
}
