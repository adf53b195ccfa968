// Package valueobject contains immutable value types shared by the domain.
package valueobject

import (
	"fmt"
	"strings"
)

// Frequency identifies how often a recurrence or installment plan repeats.
type Frequency string

const (
	FrequencyDaily        Frequency = "DAILY"
	FrequencyWeekly       Frequency = "WEEKLY"
	FrequencyBiweekly     Frequency = "BIWEEKLY"
	FrequencyMonthly      Frequency = "MONTHLY"
	FrequencyBimonthly    Frequency = "BIMONTHLY"
	FrequencyQuarterly    Frequency = "QUARTERLY"
	FrequencySemiannually Frequency = "SEMIANNUALLY"
	FrequencyYearly       Frequency = "YEARLY"
)

// MaxInterval bounds the interval multiplier accepted for any frequency.
const MaxInterval = 1000

type periodUnit int

const (
	unitDays periodUnit = iota
	unitMonths
)

type frequencyRule struct {
	unit       periodUnit
	multiplier int
}

var frequencyRules = map[Frequency]frequencyRule{
	FrequencyDaily:        {unit: unitDays, multiplier: 1},
	FrequencyWeekly:       {unit: unitDays, multiplier: 7},
	FrequencyBiweekly:     {unit: unitDays, multiplier: 14},
	FrequencyMonthly:      {unit: unitMonths, multiplier: 1},
	FrequencyBimonthly:    {unit: unitMonths, multiplier: 2},
	FrequencyQuarterly:    {unit: unitMonths, multiplier: 3},
	FrequencySemiannually: {unit: unitMonths, multiplier: 6},
	FrequencyYearly:       {unit: unitMonths, multiplier: 12},
}

// Frequencies returns every supported frequency in ascending period length.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyBiweekly,
		FrequencyMonthly,
		FrequencyBimonthly,
		FrequencyQuarterly,
		FrequencySemiannually,
		FrequencyYearly,
	}
}

// IsValid reports whether f is a supported frequency.
func (f Frequency) IsValid() bool {
	_, ok := frequencyRules[f]
	return ok
}

// IsMonthBased reports whether f advances by calendar months.
func (f Frequency) IsMonthBased() bool {
	rule, ok := frequencyRules[f]
	return ok && rule.unit == unitMonths
}

// ParseFrequency converts a case-insensitive name into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// Step is a frequency paired with its interval multiplier.
type Step struct {
	Frequency Frequency
	Interval  int
}

// MonthlyStep is the default spacing between installments.
var MonthlyStep = Step{Frequency: FrequencyMonthly, Interval: 1}

// Validate checks that the step can be used to compute dates.
func (s Step) Validate() error {
	if !s.Frequency.IsValid() {
		return fmt.Errorf("unknown frequency %q", s.Frequency)
	}
	if s.Interval < 1 || s.Interval > MaxInterval {
		return fmt.Errorf("interval must be between 1 and %d, got %d", MaxInterval, s.Interval)
	}
	return nil
}

// String renders the step as "MONTHLY x1".
func (s Step) String() string {
	return fmt.Sprintf("%s x%d", s.Frequency, s.Interval)
}
