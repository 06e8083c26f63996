package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"savewise/internal/domain/prediction"
	"savewise/internal/repository/schema"
	"savewise/pkg/errors"
)

// Name identifies the Supabase backend
const Name = "supabase"

// Compile-time check
var _ prediction.RemoteStore = (*Store)(nil)

// Store keeps prediction records in a Supabase table through PostgREST
type Store struct {
	client *client
	table  string
}

// NewStore creates a store for table in the project at projectURL.
// An empty table uses the default predictions table.
func NewStore(projectURL, anonKey, table string, opts ...Option) *Store {
	if table == "" {
		table = schema.Table
	}
	return &Store{
		client: newClient(projectURL, anonKey, opts...),
		table:  table,
	}
}

func (s *Store) Name() string {
	return Name
}

// Create inserts the flattened record and returns the row echoed back.
// An empty echo is reported as (nil, nil).
func (s *Store) Create(ctx context.Context, rec *prediction.Record) (*prediction.Record, error) {
	if rec == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "supabase: nil record")
	}

	var rows []schema.PredictionRow
	row := schema.FromRecord(rec)
	row.ID = ""
	if err := s.client.do(ctx, http.MethodPost, s.table, nil, row, &rows, "return=representation"); err != nil {
		return nil, errors.Wrap(err, "supabase insert")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	stored := rows[0].ToRecord()
	return &stored, nil
}

// List returns every row, newest first
func (s *Store) List(ctx context.Context) ([]prediction.Record, error) {
	return s.selectRows(ctx, 0)
}

// Latest returns the newest row or ErrNotFound
func (s *Store) Latest(ctx context.Context) (*prediction.Record, error) {
	records, err := s.selectRows(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.ErrNotFound
	}
	return &records[0], nil
}

// Delete removes the row with the given id
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.Wrap(errors.ErrInvalidInput, "supabase delete: empty id")
	}
	query := url.Values{"id": {"eq." + id}}
	return errors.Wrap(s.client.do(ctx, http.MethodDelete, s.table, query, nil, nil, ""), "supabase delete")
}

// Ping issues the cheapest possible select
func (s *Store) Ping(ctx context.Context) error {
	var rows []map[string]any
	query := url.Values{"select": {"id"}, "limit": {"1"}}
	return errors.Wrap(s.client.do(ctx, http.MethodGet, s.table, query, nil, &rows, ""), "supabase ping")
}

func (s *Store) selectRows(ctx context.Context, limit int) ([]prediction.Record, error) {
	query := url.Values{
		"select": {"*"},
		"order":  {"timestamp.desc"},
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var rows []schema.PredictionRow
	if err := s.client.do(ctx, http.MethodGet, s.table, query, nil, &rows, ""); err != nil {
		return nil, errors.Wrap(err, "supabase select")
	}

	records := make([]prediction.Record, len(rows))
	for i, row := range rows {
		records[i] = row.ToRecord()
	}
	return records, nil
}
