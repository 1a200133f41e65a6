package models

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date (no time of day), used for load dates.
type Date struct {
	time.Time
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalCSV() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalCSV(data []byte) error {
	s := string(data)
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalCSV([]byte(s))
}

// IssuanceDate is a parsed issuance date. When the source text could not be
// parsed the raw text is kept and Valid is false; such rows stay in the
// master table but have no orderable date.
type IssuanceDate struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// ParsedDate builds a valid issuance date.
func ParsedDate(t time.Time) IssuanceDate {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return IssuanceDate{Time: day, Raw: day.Format(dateLayout), Valid: true}
}

// UnparsedDate marks raw as unparseable, preserving the original text.
func UnparsedDate(raw string) IssuanceDate {
	return IssuanceDate{Raw: raw}
}

func (d IssuanceDate) String() string {
	if d.Valid {
		return d.Time.Format(dateLayout)
	}
	return d.Raw
}

// Between reports whether the date is inside the inclusive [from, to] range.
// Unparseable dates are never inside any range.
func (d IssuanceDate) Between(from, to *time.Time) bool {
	if !d.Valid {
		return false
	}
	if from != nil && d.Time.Before(*from) {
		return false
	}
	if to != nil && d.Time.After(*to) {
		return false
	}
	return true
}

func (d IssuanceDate) MarshalCSV() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalCSV restores a snapshot value: dates persisted by this service are
// in ISO form, anything else is the preserved raw text of an unparseable date.
func (d *IssuanceDate) UnmarshalCSV(data []byte) error {
	s := string(data)
	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = ParsedDate(t)
		return nil
	}
	*d = UnparsedDate(s)
	return nil
}

func (d IssuanceDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *IssuanceDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalCSV([]byte(s))
}
