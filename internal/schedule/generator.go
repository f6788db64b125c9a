package schedule

import (
	"errors"
	"time"
)

// ErrInvalidScheduleParameters indicates generation was requested with a
// missing start date, a non-positive horizon, or a weekday outside
// Sunday..Saturday. It is returned before any dates are produced.
var ErrInvalidScheduleParameters = errors.New("schedule: invalid schedule parameters")

// Horizon bounds date generation. Exactly one of Days or Occurrences must be
// positive: subscription creation bounds by days while incremental top-up may
// bound by occurrence count.
type Horizon struct {
	Days        int
	Occurrences int
}

// HorizonDays bounds generation to dates within [start, start+days).
func HorizonDays(days int) Horizon {
	return Horizon{Days: days}
}

// HorizonOccurrences bounds generation to the first n occurrences.
func HorizonOccurrences(n int) Horizon {
	return Horizon{Occurrences: n}
}

func (h Horizon) valid() bool {
	if h.Days > 0 {
		return h.Occurrences == 0
	}
	return h.Occurrences > 0
}

// Generate expands a cadence into an ordered sequence of calendar dates.
//
// The sequence starts at start, normalized to a bare date at midnight UTC.
// When preferredWeekday is set and start falls on a different weekday, the
// first occurrence shifts forward to the next matching weekday, never
// backward and never before start, and the cadence re-anchors on the
// shifted date. One-time frequencies yield exactly one date equal to start
// regardless of weekday preference or horizon.
//
// Generation is deterministic and side-effect free: identical inputs yield
// identical sequences, which regeneration relies on for idempotency. The
// returned dates are strictly increasing.
func Generate(start time.Time, freq Frequency, preferredWeekday *time.Weekday, horizon Horizon) ([]time.Time, error) {
	if start.IsZero() {
		return nil, ErrInvalidScheduleParameters
	}
	if !horizon.valid() {
		return nil, ErrInvalidScheduleParameters
	}
	if preferredWeekday != nil && (*preferredWeekday < time.Sunday || *preferredWeekday > time.Saturday) {
		return nil, ErrInvalidScheduleParameters
	}

	def, err := Resolve(freq)
	if err != nil {
		return nil, err
	}

	first := DateOf(start)
	if def.OneTime() {
		return []time.Time{first}, nil
	}

	if preferredWeekday != nil && first.Weekday() != *preferredWeekday {
		shift := (int(*preferredWeekday) - int(first.Weekday()) + 7) % 7
		first = first.AddDate(0, 0, shift)
	}

	var limit time.Time
	if horizon.Days > 0 {
		// The window is anchored on the requested start, not the shifted
		// first occurrence.
		limit = DateOf(start).AddDate(0, 0, horizon.Days)
	}

	steps := def.Steps()
	dates := make([]time.Time, 0, 4)
	current := first
	for i := 0; ; i++ {
		if horizon.Days > 0 && !current.Before(limit) {
			break
		}
		dates = append(dates, current)
		if horizon.Occurrences > 0 && len(dates) >= horizon.Occurrences {
			break
		}
		current = current.AddDate(0, 0, steps[i%len(steps)])
	}

	return dates, nil
}

// DateOf strips the time component, normalizing to midnight UTC. All schedule
// arithmetic operates on bare dates so weekday math is immune to DST and
// zone drift.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
