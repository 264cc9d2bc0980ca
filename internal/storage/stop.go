package storage

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is how stop timestamps are stored in the police table.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// Stop is one row of the police table. Every column is nullable in the
// source data.
type Stop struct {
	Timestamp        NullTime
	CountryName      sql.NullString
	DriverGender     sql.NullString
	DriverAge        sql.NullInt64
	DriverRace       sql.NullString
	ViolationRaw     sql.NullString
	Violation        sql.NullString
	SearchConducted  sql.NullBool
	IsArrested       sql.NullBool
	StopOutcome      sql.NullString
	StopDuration     sql.NullString
	DrugsRelatedStop sql.NullBool
	VehicleNumber    sql.NullString
}

// NullTime reads timestamps written either as text or, when the column was
// declared TIMESTAMP, as driver-parsed time values.
type NullTime struct {
	Time  time.Time
	Valid bool
}

func (n *NullTime) Scan(value any) error {
	n.Time, n.Valid = time.Time{}, false
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func (n *NullTime) parse(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	n.Time, n.Valid = t, true
	return nil
}

func (n NullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time.Format(TimestampLayout), nil
}

// ParseTimestamp accepts the layouts the police table has been written with.
func ParseTimestamp(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func Timestamp(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

func String(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}

func Int(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func Bool(v bool) sql.NullBool {
	return sql.NullBool{Bool: v, Valid: true}
}
