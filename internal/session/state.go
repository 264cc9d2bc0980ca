package session

import (
	"context"
	"errors"

	"trafficledger/internal/storage"
)

var ErrInvalidID = errors.New("invalid session id")

// State is what the SQL Queries page remembers for one browser session:
// the selected question and the outcome of the last run of that question.
type State struct {
	ID       string         `json:"id"`
	Selected int            `json:"selected"`
	Ran      bool           `json:"ran"`
	Result   *storage.Table `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Store persists session state between requests.
type Store interface {
	// Get returns a fresh state for ids it has never seen.
	Get(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, state State) error
}

func New(id string) State {
	return State{ID: id}
}

// Select changes the selected question. Switching to a different question
// drops the previous answer so it is never shown against the wrong question.
func (s *State) Select(index int) {
	if index == s.Selected {
		return
	}
	s.Selected = index
	s.Clear()
}

func (s *State) Clear() {
	s.Ran = false
	s.Result = nil
	s.Error = ""
}

// Record stores the outcome of running the selected question. A failed run
// discards any earlier result.
func (s *State) Record(table *storage.Table, err error) {
	s.Ran = true
	if err != nil {
		s.Result = nil
		s.Error = err.Error()
		return
	}
	if table == nil {
		table = &storage.Table{Rows: []storage.Row{}}
	}
	s.Result = table
	s.Error = ""
}

// HasResult reports whether a successful run is on record, which may have
// zero rows.
func (s State) HasResult() bool {
	return s.Ran && s.Error == "" && s.Result != nil
}
