package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	return open(path, false)
}

// OpenReadOnly rejects every statement that would modify the database file.
func OpenReadOnly(path string) (*Store, error) {
	return open(path, true)
}

func open(path string, readOnly bool) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path required")
	}
	dsn := path
	if readOnly {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=query_only(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every pooled connection to :memory: would see its own empty database.
	if strings.HasPrefix(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS police (
	timestamp TEXT,
	country_name TEXT,
	driver_gender TEXT,
	driver_age INTEGER,
	driver_race TEXT,
	violation_raw TEXT,
	violation TEXT,
	search_conducted INTEGER,
	is_arrested INTEGER,
	stop_outcome TEXT,
	stop_duration TEXT,
	drugs_related_stop INTEGER,
	vehicle_number TEXT
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) InsertStops(ctx context.Context, stops []Stop) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO police (
	timestamp, country_name, driver_gender, driver_age, driver_race,
	violation_raw, violation, search_conducted, is_arrested, stop_outcome,
	stop_duration, drugs_related_stop, vehicle_number
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, stop := range stops {
		_, err = stmt.ExecContext(ctx,
			stop.Timestamp,
			stop.CountryName,
			stop.DriverGender,
			stop.DriverAge,
			stop.DriverRace,
			stop.ViolationRaw,
			stop.Violation,
			stop.SearchConducted,
			stop.IsArrested,
			stop.StopOutcome,
			stop.StopDuration,
			stop.DrugsRelatedStop,
			stop.VehicleNumber,
		)
		if err != nil {
			return 0, fmt.Errorf("insert stop %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(stops), nil
}

// LoadStops returns every record in rowid order, which is the order rows
// were loaded in.
func (s *Store) LoadStops(ctx context.Context) ([]Stop, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT timestamp, country_name, driver_gender, driver_age, driver_race,
	violation_raw, violation, search_conducted, is_arrested, stop_outcome,
	stop_duration, drugs_related_stop, vehicle_number
FROM police
ORDER BY rowid
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []Stop
	for rows.Next() {
		var stop Stop
		if err := rows.Scan(
			&stop.Timestamp,
			&stop.CountryName,
			&stop.DriverGender,
			&stop.DriverAge,
			&stop.DriverRace,
			&stop.ViolationRaw,
			&stop.Violation,
			&stop.SearchConducted,
			&stop.IsArrested,
			&stop.StopOutcome,
			&stop.StopDuration,
			&stop.DrugsRelatedStop,
			&stop.VehicleNumber,
		); err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

func (s *Store) CountStops(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM police
`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Query runs a parameterless statement and returns its rows with column
// order preserved.
func (s *Store) Query(ctx context.Context, statement string) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
