package valueobject

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in CLI flags.
const DateLayout = "2006-01-02"

// NormalizeDate returns 00:00 UTC of t's calendar day.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the UTC calendar day containing now.
func Today(now time.Time) time.Time {
	return NormalizeDate(now.UTC())
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// AddMonthsClamped moves t by months calendar months, clamping the day to
// the last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	year += floorDiv(total, 12)
	target := time.Month(floorMod(total, 12) + 1)

	if last := daysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, 0, 0, 0, 0, time.UTC)
}

// Next returns the occurrence that follows from for the given frequency and interval.
func Next(frequency Frequency, interval int, from time.Time) (time.Time, error) {
	return NextAnchored(frequency, interval, from, from)
}

// NextAnchored returns the occurrence that follows from in a series that
// started at anchor. Month-based steps keep the anchor's day-of-month, so a
// series anchored on the 31st goes Jan 31, Feb 29, Mar 31 instead of drifting.
func NextAnchored(frequency Frequency, interval int, anchor, from time.Time) (time.Time, error) {
	step := Step{Frequency: frequency, Interval: interval}
	if err := step.Validate(); err != nil {
		return time.Time{}, err
	}

	rule := frequencyRules[frequency]
	anchor = NormalizeDate(anchor)
	from = NormalizeDate(from)

	if rule.unit == unitDays {
		return from.AddDate(0, 0, rule.multiplier*interval), nil
	}

	elapsed := (from.Year()-anchor.Year())*12 + int(from.Month()) - int(anchor.Month())
	return AddMonthsClamped(anchor, elapsed+rule.multiplier*interval), nil
}

// OccurrenceAt returns the k-th occurrence of a series starting at anchor.
// The anchor itself is occurrence 0.
func OccurrenceAt(step Step, anchor time.Time, k int) (time.Time, error) {
	if err := step.Validate(); err != nil {
		return time.Time{}, err
	}
	if k < 0 {
		return time.Time{}, fmt.Errorf("occurrence index cannot be negative, got %d", k)
	}

	rule := frequencyRules[step.Frequency]
	anchor = NormalizeDate(anchor)

	if rule.unit == unitDays {
		return anchor.AddDate(0, 0, k*rule.multiplier*step.Interval), nil
	}
	return AddMonthsClamped(anchor, k*rule.multiplier*step.Interval), nil
}

// Schedule returns the first count occurrences of a series starting at anchor.
func Schedule(step Step, anchor time.Time, count int) ([]time.Time, error) {
	dates := make([]time.Time, 0, count)
	for k := 0; k < count; k++ {
		d, err := OccurrenceAt(step, anchor, k)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
