// Package model defines the event and summary data types.
package model

import (
	"fmt"
	"time"
)

// PersonCount holds the number of distinct messages a person sent and received.
type PersonCount struct {
	Person   string `json:"person"`
	Sent     int    `json:"sent"`
	Received int    `json:"received"`
}

// Month is a calendar month, independent of any time zone.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses the YYYY-MM form produced by String.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthlySent is the number of distinct messages a person sent in a month.
type MonthlySent struct {
	Person string `json:"person"`
	Month  Month  `json:"month"`
	Sent   int    `json:"sent"`
}

// MonthlyShare is a person's fraction of the cohort's unique contacts in a month.
type MonthlyShare struct {
	Person string  `json:"person"`
	Month  Month   `json:"month"`
	Share  float64 `json:"relative_share"`
}
