package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return store
}

func TestInsertAndLoadStopsKeepsLoadOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC)
	stops := []Stop{
		{
			Timestamp:        Timestamp(base),
			CountryName:      String("IN"),
			DriverGender:     String("M"),
			DriverAge:        Int(30),
			ViolationRaw:     String("Speeding"),
			SearchConducted:  Bool(true),
			IsArrested:       Bool(false),
			StopOutcome:      String("Warning"),
			StopDuration:     String("0-15 Min"),
			DrugsRelatedStop: Bool(false),
		},
		{
			Timestamp:   Timestamp(base.Add(time.Hour)),
			CountryName: String("US"),
		},
		{},
	}
	count, err := store.InsertStops(ctx, stops)
	if err != nil {
		t.Fatalf("insert stops: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 inserted, got %d", count)
	}

	loaded, err := store.LoadStops(ctx)
	if err != nil {
		t.Fatalf("load stops: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(loaded))
	}
	if !loaded[0].Timestamp.Valid || !loaded[0].Timestamp.Time.Equal(base) {
		t.Fatalf("unexpected first timestamp: %+v", loaded[0].Timestamp)
	}
	if loaded[0].DriverAge.Int64 != 30 || !loaded[0].SearchConducted.Bool {
		t.Fatalf("unexpected first stop: %+v", loaded[0])
	}
	if loaded[1].CountryName.String != "US" {
		t.Fatalf("expected second stop from US, got %q", loaded[1].CountryName.String)
	}
	if loaded[2].Timestamp.Valid || loaded[2].DriverAge.Valid || loaded[2].IsArrested.Valid {
		t.Fatalf("expected null columns to stay null: %+v", loaded[2])
	}

	total, err := store.CountStops(ctx)
	if err != nil {
		t.Fatalf("count stops: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 stops counted, got %d", total)
	}
}

func TestQueryPreservesColumnOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, err := store.InsertStops(ctx, []Stop{
		{CountryName: String("IN"), DriverAge: Int(20)},
		{CountryName: String("IN"), DriverAge: Int(40)},
	}); err != nil {
		t.Fatalf("insert stops: %v", err)
	}

	table, err := store.Query(ctx, `SELECT driver_age, country_name FROM police ORDER BY driver_age`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "driver_age" || table.Columns[1] != "country_name" {
		t.Fatalf("unexpected columns: %v", table.Columns)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	country, ok := table.Value(1, "country_name")
	if !ok || country != "IN" {
		t.Fatalf("unexpected country value: %v (%v)", country, ok)
	}
	age, ok := table.Value(1, "driver_age")
	if !ok || age != int64(40) {
		t.Fatalf("unexpected age value: %#v", age)
	}
	if _, ok := table.Value(0, "missing"); ok {
		t.Fatalf("expected unknown column lookup to fail")
	}
}

func TestQueryWithNoRowsReturnsEmptyTable(t *testing.T) {
	store := openTestStore(t)

	table, err := store.Query(context.Background(), `SELECT vehicle_number FROM police`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if table == nil || !table.Empty() {
		t.Fatalf("expected empty table, got %+v", table)
	}
	if len(table.Columns) != 1 {
		t.Fatalf("expected column names on empty result, got %v", table.Columns)
	}
}

func TestQueryReportsEngineErrors(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Query(context.Background(), `SELECT nope FROM police`); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "traffic.db")

	writer, err := Open(path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if err := writer.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	if _, err := writer.InsertStops(ctx, []Stop{{CountryName: String("IN")}}); err != nil {
		t.Fatalf("insert stops: %v", err)
	}
	_ = writer.Close()

	reader, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })

	if _, err := reader.Query(ctx, `DELETE FROM police`); err == nil {
		t.Fatalf("expected write to be rejected")
	}
	count, err := reader.CountStops(ctx)
	if err != nil {
		t.Fatalf("count stops: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stop, got %d", count)
	}
}

func TestNullTimeScan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Time
		valid bool
	}{
		{name: "nil", value: nil},
		{name: "empty text", value: ""},
		{name: "text", value: "2020-01-01 00:01:00", want: time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC), valid: true},
		{name: "iso text", value: "2020-01-01T13:45:10", want: time.Date(2020, 1, 1, 13, 45, 10, 0, time.UTC), valid: true},
		{name: "bytes", value: []byte("2021-06-30 23:59:59"), want: time.Date(2021, 6, 30, 23, 59, 59, 0, time.UTC), valid: true},
		{name: "time value", value: time.Date(2022, 2, 2, 2, 2, 2, 0, time.UTC), want: time.Date(2022, 2, 2, 2, 2, 2, 0, time.UTC), valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got NullTime
			if err := got.Scan(tt.value); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if got.Valid != tt.valid {
				t.Fatalf("expected valid=%v, got %v", tt.valid, got.Valid)
			}
			if tt.valid && !got.Time.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, got.Time)
			}
		})
	}

	var bad NullTime
	if err := bad.Scan("yesterday"); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

func TestSnapshotCountries(t *testing.T) {
	snapshot := NewSnapshot([]Stop{
		{CountryName: String("US")},
		{CountryName: String("IN")},
		{},
		{CountryName: String("US")},
		{CountryName: String("Canada")},
	})

	got := snapshot.Countries()
	want := []string{"Canada", "IN", "US"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if snapshot.Len() != 5 {
		t.Fatalf("expected 5 stops, got %d", snapshot.Len())
	}

	var empty *Snapshot
	if empty.Len() != 0 || empty.Stops() != nil {
		t.Fatalf("nil snapshot should be empty")
	}
}
