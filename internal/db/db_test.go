package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"saasterkit/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- Mock Rows for Query ---

// mockRows implements pgx.Rows for testing multi-row results; scanFn
// receives the row index.
type mockRows struct {
	count   int
	idx     int
	closed  bool
	scanFn  func(row int, dest ...any) error
	scanErr error
	errVal  error
}

func newMockRows(count int, scanFn func(row int, dest ...any) error) *mockRows {
	return &mockRows{count: count, idx: -1, scanFn: scanFn}
}

func (r *mockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < r.count
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return r.scanFn(r.idx, dest...)
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// setScan assigns a value into a scan destination by pointer type.
func setScan(dest, value any) {
	switch d := dest.(type) {
	case *string:
		*d = value.(string)
	case **string:
		if value == nil {
			*d = nil
		} else {
			s := value.(string)
			*d = &s
		}
	case *bool:
		*d = value.(bool)
	case *int64:
		*d = value.(int64)
	case *time.Time:
		*d = value.(time.Time)
	case **time.Time:
		if value == nil {
			*d = nil
		} else {
			t := value.(time.Time)
			*d = &t
		}
	case *[]byte:
		*d = value.([]byte)
	case *json.RawMessage:
		*d = json.RawMessage(value.([]byte))
	case *types.TodoCategory:
		*d = types.TodoCategory(value.(string))
	}
}
