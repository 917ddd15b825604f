package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	query string
	args  []any
}

// fakeSQL answers statements from canned values keyed by the query text.
type fakeSQL struct {
	calls   []call
	rows    map[string][][]any
	execTag pgconn.CommandTag
	err     error
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	return f.execTag, f.err
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	values := f.rows[query]
	if len(values) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: values[0]}
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{values: f.rows[query], idx: -1}, nil
}

func (f *fakeSQL) last() call {
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	values [][]any
	idx    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.values[r.idx])
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.idx], nil
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr = values[i].(string)
		case *int:
			*ptr = values[i].(int)
		case *int64:
			*ptr = values[i].(int64)
		case *bool:
			*ptr = values[i].(bool)
		case *time.Time:
			*ptr = values[i].(time.Time)
		default:
			return errors.New("scan: unsupported destination")
		}
	}
	return nil
}
