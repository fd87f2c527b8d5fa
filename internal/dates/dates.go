// Package dates handles calendar dates that are stored without a time of day
// and rendered in the Malaysia display timezone.
package dates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Display is the fixed presentation timezone (UTC+8).
var Display = time.FixedZone("MYT", 8*60*60)

// Date is a calendar day. The wrapped time is always midnight UTC.
type Date struct {
	time.Time
}

// New returns the given calendar day.
func New(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day in t's location.
func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Today is the current calendar day in the display timezone.
func Today() Date {
	return FromTime(time.Now().In(Display))
}

// Parse accepts YYYY-MM-DD or an RFC3339 timestamp.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(layout, s); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(layout)
}

// InDisplay returns midnight of the calendar day in the display timezone.
func (d Date) InDisplay() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Display)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.InDisplay().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
