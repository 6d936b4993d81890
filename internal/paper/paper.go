package paper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the serialized form of a Date.
const DateLayout = "2006-01-02"

// Paper is one retrieved paper. The JSON field names are the on-disk cache
// format.
type Paper struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	PubDate    Date   `json:"pub_date"`
	Summary    string `json:"summary"`
	Translated string `json:"translated"`
}

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int

	// raw keeps a cached value that is not a recognised date so it is
	// written back unchanged.
	raw string
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Yesterday returns the calendar date one day before now, in now's location.
func Yesterday(now time.Time) Date {
	return DateOf(now.AddDate(0, 0, -1))
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// IsValid reports whether d holds a calendar date.
func (d Date) IsValid() bool {
	return d.raw == "" && !d.IsZero()
}

func (d Date) String() string {
	if d.raw != "" {
		return d.raw
	}
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or an RFC 3339 timestamp. Any other
// string is kept verbatim so one odd cache record never fails the whole
// document.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateOf(t.UTC())
		return nil
	}
	*d = Date{raw: s}
	return nil
}
