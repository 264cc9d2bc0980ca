package catalog

//go:generate mockgen -source=runner.go -destination=mocks/mocks.go -package=mocks Querier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"trafficledger/internal/observability"
	"trafficledger/internal/storage"
)

var ErrUnknownQuestion = errors.New("unknown question")

// Querier runs a parameterless read-only statement.
type Querier interface {
	Query(ctx context.Context, statement string) (*storage.Table, error)
}

// QueryError reports a catalog statement the engine rejected.
type QueryError struct {
	Index int
	Label string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index+1, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

type Runner struct {
	querier Querier
	logger  *slog.Logger
	metrics *observability.Metrics
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *Runner) {
		r.metrics = metrics
	}
}

func NewRunner(querier Querier, opts ...Option) (*Runner, error) {
	if querier == nil {
		return nil, errors.New("querier is required")
	}
	r := &Runner{
		querier: querier,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Run executes the question at a zero-based index. A result with zero rows
// is returned as an empty table, not an error.
func (r *Runner) Run(ctx context.Context, index int) (*storage.Table, error) {
	question, ok := Lookup(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, index+1)
	}

	start := time.Now()
	table, err := r.querier.Query(ctx, question.Statement)
	elapsed := time.Since(start)
	if err != nil {
		r.metrics.ObserveQuery(index, observability.OutcomeError, elapsed)
		r.logger.ErrorContext(ctx, "catalog query failed",
			"question", index+1,
			"error", err,
		)
		return nil, &QueryError{Index: index, Label: question.Label, Err: err}
	}
	if table == nil {
		table = &storage.Table{Rows: []storage.Row{}}
	}

	outcome := observability.OutcomeOK
	if table.Empty() {
		outcome = observability.OutcomeEmpty
	}
	r.metrics.ObserveQuery(index, outcome, elapsed)
	r.logger.InfoContext(ctx, "catalog query ran",
		"question", index+1,
		"rows", table.Len(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return table, nil
}
