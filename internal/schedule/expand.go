// Package schedule expands a (start, end, repetition) triple into the ordered
// set of concrete occurrence time-spans. It is a pure calendar computation
// with no storage dependency.
package schedule

import (
	"errors"
	"time"

	"github.com/openrota/roombooking-service/internal/models"
)

var (
	// ErrCrossDaySingle is returned when a non-repeating booking spans more
	// than one calendar date.
	ErrCrossDaySingle = errors.New("start and end must fall on the same date for a non-repeating booking")

	// ErrBadRepetition is returned for a (frequency, interval) pair the
	// engine does not know how to expand.
	ErrBadRepetition = errors.New("unsupported repetition pair")
)

// Span is one concrete occurrence: a single calendar date carrying the
// booking's original start/end times of day.
type Span struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// ValidateRepetition checks a (frequency, interval) pair. The interval is
// ignored for non-repeating bookings and must be positive otherwise.
func ValidateRepetition(freq models.RepeatFrequency, interval int) error {
	switch freq {
	case models.RepeatNever:
		return nil
	case models.RepeatDay, models.RepeatWeek, models.RepeatMonth, models.RepeatYear:
		if interval < 1 {
			return ErrBadRepetition
		}
		return nil
	default:
		return ErrBadRepetition
	}
}

// Expand generates the ascending, finite occurrence sequence for the given
// span and repetition. Dates are stepped by the frequency's unit times the
// interval, from start's date up to and including end's date; every
// occurrence keeps the original start/end times of day.
//
// Monthly and yearly steps landing on a day that does not exist in the target
// month clamp to the last valid day of that month (Jan 31 -> Feb 28/29).
func Expand(startDT, endDT time.Time, freq models.RepeatFrequency, interval int) ([]Span, error) {
	if err := ValidateRepetition(freq, interval); err != nil {
		return nil, err
	}
	if endDT.Before(startDT) {
		return nil, errors.New("end must not precede start")
	}

	if freq == models.RepeatNever {
		if !sameDate(startDT, endDT) {
			return nil, ErrCrossDaySingle
		}
		return []Span{{Date: dateOf(startDT), Start: startDT, End: endDT}}, nil
	}

	lastDate := dateOf(endDT)
	var spans []Span
	for n := 0; ; n++ {
		d := stepDate(startDT, freq, interval, n)
		if d.After(lastDate) {
			break
		}
		spans = append(spans, Span{
			Date:  d,
			Start: atTimeOf(d, startDT),
			End:   atTimeOf(d, endDT),
		})
	}
	return spans, nil
}

// stepDate returns the date of the n-th occurrence.
func stepDate(start time.Time, freq models.RepeatFrequency, interval, n int) time.Time {
	switch freq {
	case models.RepeatDay:
		return dateOf(start).AddDate(0, 0, n*interval)
	case models.RepeatWeek:
		return dateOf(start).AddDate(0, 0, 7*n*interval)
	case models.RepeatMonth:
		return addMonthsClamped(start, n*interval)
	default: // RepeatYear
		return addMonthsClamped(start, 12*n*interval)
	}
}

// addMonthsClamped steps by whole months, clamping the day of month to the
// last valid day of the target month instead of rolling over.
func addMonthsClamped(start time.Time, months int) time.Time {
	y, m, d := start.Date()
	total := int(m) - 1 + months
	ty := y + total/12
	tm := time.Month(total%12 + 1)
	if last := daysInMonth(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, 0, 0, 0, 0, start.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atTimeOf(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), clock.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
