package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 layout used when writing dates.
const DateFormat = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Registry payloads sometimes carry a time part, users sometimes drop the zero padding.
var readDateLayouts = []string{
	DateFormat,
	"2006-1-2",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Date is a calendar day with no time-of-day or location.
type Date struct {
	t time.Time
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current date.
func Today() Date { return DateOf(time.Now()) }

// ParseDate is lenient: it accepts "2025-07-01", "2025-7-1" and timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range readDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q, want format %q", s, DateFormat)
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(x Date) bool { return d.t.Before(x.t) }

func (d Date) Equal(x Date) bool { return d.t.Equal(x.t) }

// DaysUntil returns the number of whole days from d to x, negative when x is earlier.
// Both dates sit at UTC midnight, so the difference in seconds is an exact
// multiple of a day and never overflows time.Duration.
func (d Date) DaysUntil(x Date) int64 {
	return (x.t.Unix() - d.t.Unix()) / secondsPerDay
}

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Date{}
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements the driver.Valuer interface.
func (d Date) Value() (driver.Value, error) {
	if d.t.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

// Scan implements the sql.Scanner interface.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("unsupported type for Date scan: %T", value)
	}
}
