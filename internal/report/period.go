package report

import (
	"fmt"
	"strings"
	"time"
)

// Period is a named calendar-based filter window.
type Period int

const (
	Daily Period = iota
	Monthly
	Yearly
	All
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	case All:
		return "all"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// ParsePeriod parses a period name. The empty string maps to Monthly, the
// default window of the financial report.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(s) {
	case "daily", "day":
		return Daily, nil
	case "", "monthly", "month":
		return Monthly, nil
	case "yearly", "year":
		return Yearly, nil
	case "all":
		return All, nil
	default:
		return All, fmt.Errorf("unknown period %q", s)
	}
}

// Contains reports whether t falls inside the period anchored at ref.
// Calendar components are compared in the evaluator's local time zone with no
// normalization against the stored date's origin; a date exactly on a month
// or year boundary belongs to the period containing its literal date.
func (p Period) Contains(t, ref time.Time) bool {
	t = t.In(time.Local)
	ref = ref.In(time.Local)
	switch p {
	case Daily:
		ty, tm, td := t.Date()
		ry, rm, rd := ref.Date()
		return ty == ry && tm == rm && td == rd
	case Monthly:
		return t.Year() == ref.Year() && t.Month() == ref.Month()
	case Yearly:
		return t.Year() == ref.Year()
	default:
		return true
	}
}
