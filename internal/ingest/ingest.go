package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"trafficledger/internal/storage"
)

const defaultBatchSize = 500

var ErrMissingColumn = errors.New("missing csv column")

// Loader fills the police table from a CSV export whose header names the
// columns. Either a timestamp column or stop_date plus stop_time must be
// present; every other column is optional.
type Loader struct {
	Store     *storage.Store
	Logger    *slog.Logger
	BatchSize int
}

// RowError reports a record that could not be converted. Line is the CSV
// line number including the header.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// LoadCSV creates the schema if needed and appends every record in r. It
// returns the number of stops inserted before any failure.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	if l.Store == nil {
		return 0, fmt.Errorf("store not configured")
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	if err := l.Store.InitSchema(ctx); err != nil {
		return 0, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return 0, err
	}

	inserted := 0
	line := 1
	batch := make([]storage.Stop, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := l.Store.InsertStops(ctx, batch)
		inserted += n
		batch = batch[:0]
		return err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return inserted, fmt.Errorf("read csv line %d: %w", line, err)
		}
		stop, err := columns.buildStop(record, line)
		if err != nil {
			return inserted, err
		}
		batch = append(batch, stop)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, err
	}

	logger.InfoContext(ctx, "csv loaded", "stops", inserted)
	return inserted, nil
}

type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	columns := make(columnIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}
	_, hasTimestamp := columns["timestamp"]
	_, hasDate := columns["stop_date"]
	_, hasTime := columns["stop_time"]
	if !hasTimestamp && !(hasDate && hasTime) {
		return nil, fmt.Errorf("%w: timestamp or stop_date and stop_time", ErrMissingColumn)
	}
	return columns, nil
}

func (c columnIndex) field(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (c columnIndex) buildStop(record []string, line int) (storage.Stop, error) {
	var stop storage.Stop

	raw := c.field(record, "timestamp")
	if raw == "" {
		date, clock := c.field(record, "stop_date"), c.field(record, "stop_time")
		if date != "" && clock != "" {
			raw = date + " " + clock
		}
	}
	if raw != "" {
		ts, err := storage.ParseTimestamp(raw)
		if err != nil {
			return stop, &RowError{Line: line, Column: "timestamp", Err: err}
		}
		stop.Timestamp = storage.Timestamp(ts)
	}

	stop.CountryName = text(c.field(record, "country_name"))
	stop.DriverGender = text(c.field(record, "driver_gender"))
	stop.DriverRace = text(c.field(record, "driver_race"))
	stop.ViolationRaw = text(c.field(record, "violation_raw"))
	stop.Violation = text(c.field(record, "violation"))
	stop.StopOutcome = text(c.field(record, "stop_outcome"))
	stop.StopDuration = text(c.field(record, "stop_duration"))
	stop.VehicleNumber = text(c.field(record, "vehicle_number"))

	age, err := parseAge(c.field(record, "driver_age"))
	if err != nil {
		return stop, &RowError{Line: line, Column: "driver_age", Err: err}
	}
	stop.DriverAge = age

	flags := []struct {
		column string
		dest   *sql.NullBool
	}{
		{"search_conducted", &stop.SearchConducted},
		{"is_arrested", &stop.IsArrested},
		{"drugs_related_stop", &stop.DrugsRelatedStop},
	}
	for _, f := range flags {
		value, err := parseBool(c.field(record, f.column))
		if err != nil {
			return stop, &RowError{Line: line, Column: f.column, Err: err}
		}
		*f.dest = value
	}

	return stop, nil
}

func text(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return storage.String(value)
}

// parseAge accepts exports that wrote ages as floats, such as "30.0".
func parseAge(value string) (sql.NullInt64, error) {
	if value == "" {
		return sql.NullInt64{}, nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return storage.Int(n), nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) {
		return sql.NullInt64{}, fmt.Errorf("%q is not a whole number", value)
	}
	return storage.Int(int64(f)), nil
}

func parseBool(value string) (sql.NullBool, error) {
	switch strings.ToLower(value) {
	case "":
		return sql.NullBool{}, nil
	case "true", "t", "1", "yes":
		return storage.Bool(true), nil
	case "false", "f", "0", "no":
		return storage.Bool(false), nil
	default:
		return sql.NullBool{}, fmt.Errorf("%q is not a boolean", value)
	}
}
