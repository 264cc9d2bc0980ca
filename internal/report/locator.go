package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trafficledger/internal/storage"
)

// LocateInput is the Generate Summary form. Date is YYYY-MM-DD and Time is
// HH:MM:SS.
type LocateInput struct {
	Country string `json:"country"`
	Gender  string `json:"gender"`
	Age     string `json:"age"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

type LocateResult struct {
	Found   bool         `json:"found"`
	Summary string       `json:"summary,omitempty"`
	Stop    storage.Stop `json:"-"`
}

const NoMatchMessage = "No matching record found for the given details."

const unknownText = "unknown"

type stopQuery struct {
	country   string
	gender    string
	age       int64
	timestamp time.Time
}

// Locate finds the first stop, in load order, that matches every field of
// the input exactly and renders it as a sentence. A lookup that matches
// nothing is not an error.
func Locate(stops []storage.Stop, input LocateInput) (LocateResult, error) {
	q, err := parseInput(input)
	if err != nil {
		return LocateResult{}, err
	}

	for _, stop := range stops {
		if !q.matches(stop) {
			continue
		}
		return LocateResult{
			Found:   true,
			Summary: Describe(stop),
			Stop:    stop,
		}, nil
	}
	return LocateResult{}, nil
}

func parseInput(input LocateInput) (stopQuery, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"country", input.Country},
		{"gender", input.Gender},
		{"age", input.Age},
		{"date", input.Date},
		{"time", input.Time},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return stopQuery{}, &MissingInputError{Fields: missing}
	}

	gender := strings.ToUpper(strings.TrimSpace(input.Gender))
	if gender != "M" && gender != "F" {
		return stopQuery{}, &FormatError{Field: "gender", Err: fmt.Errorf("%q is not M or F", input.Gender)}
	}

	age, err := strconv.Atoi(strings.TrimSpace(input.Age))
	if err != nil {
		return stopQuery{}, &FormatError{Field: "age", Err: unwrapNumError(err)}
	}

	raw := strings.TrimSpace(input.Date) + " " + strings.TrimSpace(input.Time)
	ts, err := time.Parse(storage.TimestampLayout, raw)
	if err != nil {
		return stopQuery{}, &FormatError{Field: "timestamp", Err: err}
	}

	return stopQuery{
		country:   strings.TrimSpace(input.Country),
		gender:    gender,
		age:       int64(age),
		timestamp: ts,
	}, nil
}

func unwrapNumError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Errorf("%q is not an integer: %w", numErr.Num, numErr.Err)
	}
	return err
}

func (q stopQuery) matches(stop storage.Stop) bool {
	if !stop.CountryName.Valid || stop.CountryName.String != q.country {
		return false
	}
	if !stop.DriverGender.Valid || !strings.EqualFold(stop.DriverGender.String, q.gender) {
		return false
	}
	if !stop.DriverAge.Valid || stop.DriverAge.Int64 != q.age {
		return false
	}
	return stop.Timestamp.Valid && stop.Timestamp.Time.Equal(q.timestamp)
}

// Describe renders a stop as a single descriptive sentence.
func Describe(stop storage.Stop) string {
	age := unknownText
	if stop.DriverAge.Valid {
		age = strconv.FormatInt(stop.DriverAge.Int64, 10)
	}

	gender := "female"
	if strings.ToUpper(stop.DriverGender.String) == "M" {
		gender = "male"
	}

	at := unknownText
	if stop.Timestamp.Valid {
		at = stop.Timestamp.Time.Format("03:04 PM")
	}

	search := "No search was conducted"
	if stop.SearchConducted.Valid && stop.SearchConducted.Bool {
		search = "A search was conducted"
	}

	drugs := "was not drug-related"
	if stop.DrugsRelatedStop.Valid && stop.DrugsRelatedStop.Bool {
		drugs = "was drug-related"
	}

	return fmt.Sprintf(
		"A %s-year-old %s driver was stopped for %s at %s. %s, and they received a %s. The stop lasted %s and %s.",
		age,
		gender,
		textOrUnknown(stop.ViolationRaw.String, stop.ViolationRaw.Valid),
		at,
		search,
		strings.ToLower(textOrUnknown(stop.StopOutcome.String, stop.StopOutcome.Valid)),
		textOrUnknown(stop.StopDuration.String, stop.StopDuration.Valid),
		drugs,
	)
}

func textOrUnknown(value string, valid bool) string {
	if !valid || strings.TrimSpace(value) == "" {
		return unknownText
	}
	return value
}
