package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"savewise/internal/domain/prediction"
	"savewise/internal/repository/schema"
	"savewise/pkg/errors"
)

// Name identifies the Postgres backend
const Name = "postgres"

// Compile-time check
var _ prediction.RemoteStore = (*PredictionRepository)(nil)

// PredictionRepository stores flattened prediction rows in Postgres
type PredictionRepository struct {
	db          DBTX
	table       string
	insertQuery string
}

// NewPredictionRepository creates a repository over db (a *sqlx.DB or *sqlx.Tx)
func NewPredictionRepository(db DBTX) *PredictionRepository {
	return &PredictionRepository{
		db:          db,
		table:       schema.Table,
		insertQuery: buildInsert(schema.Table),
	}
}

func buildInsert(table string) string {
	cols := schema.InsertColumns()
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id::text",
		table, strings.Join(cols, ", "), strings.Join(named, ", "))
}

func (r *PredictionRepository) Name() string {
	return Name
}

// EnsureSchema creates the predictions table when it does not exist
func (r *PredictionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTableSQL)
	return errors.Wrap(err, "create predictions table")
}

// Create inserts a record and returns it with the generated id
func (r *PredictionRepository) Create(ctx context.Context, rec *prediction.Record) (*prediction.Record, error) {
	if rec == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "postgres: nil record")
	}

	query, args, err := sqlx.Named(r.insertQuery, schema.FromRecord(rec))
	if err != nil {
		return nil, errors.Wrap(err, "bind insert")
	}

	var id string
	if err := r.db.GetContext(ctx, &id, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		return nil, errors.Wrap(err, "insert prediction")
	}

	stored := *rec
	stored.ID = id
	return &stored, nil
}

// List returns every record, newest first
func (r *PredictionRepository) List(ctx context.Context) ([]prediction.Record, error) {
	var rows []schema.PredictionRow

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY timestamp DESC`, selectColumns(), r.table)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "select predictions")
	}

	records := make([]prediction.Record, len(rows))
	for i, row := range rows {
		records[i] = row.ToRecord()
	}
	return records, nil
}

// Latest returns the newest record or ErrNotFound
func (r *PredictionRepository) Latest(ctx context.Context) (*prediction.Record, error) {
	var row schema.PredictionRow

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY timestamp DESC LIMIT 1`, selectColumns(), r.table)
	err := r.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select latest prediction")
	}

	rec := row.ToRecord()
	return &rec, nil
}

// Delete removes a record by id
func (r *PredictionRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id::text = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, "delete prediction")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// Ping checks connectivity
func (r *PredictionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func selectColumns() string {
	return "id::text AS id, " + strings.Join(schema.InsertColumns(), ", ")
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS predictions (
	id BIGSERIAL PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_id TEXT,

	income DOUBLE PRECISION NOT NULL,
	age INTEGER NOT NULL,
	dependents INTEGER NOT NULL,
	occupation TEXT NOT NULL,
	city_tier TEXT NOT NULL,

	rent DOUBLE PRECISION NOT NULL,
	loan_repayment DOUBLE PRECISION NOT NULL,
	insurance DOUBLE PRECISION NOT NULL,
	groceries DOUBLE PRECISION NOT NULL,
	transport DOUBLE PRECISION NOT NULL,
	eating_out DOUBLE PRECISION NOT NULL,
	entertainment DOUBLE PRECISION NOT NULL,
	utilities DOUBLE PRECISION NOT NULL,
	healthcare DOUBLE PRECISION NOT NULL,
	education DOUBLE PRECISION NOT NULL,
	miscellaneous DOUBLE PRECISION NOT NULL,

	desired_savings_percentage DOUBLE PRECISION NOT NULL,
	disposable_income DOUBLE PRECISION NOT NULL,

	savings_rate DOUBLE PRECISION,
	actual_savings_potential DOUBLE PRECISION,
	essential_expenses DOUBLE PRECISION,
	essential_expense_ratio DOUBLE PRECISION,
	non_essential_income DOUBLE PRECISION,
	expense_efficiency DOUBLE PRECISION,
	total_expenses DOUBLE PRECISION,
	debt_to_income_ratio DOUBLE PRECISION,
	financial_stress_score DOUBLE PRECISION,

	potential_savings_groceries DOUBLE PRECISION NOT NULL,
	potential_savings_transport DOUBLE PRECISION NOT NULL,
	potential_savings_eating_out DOUBLE PRECISION NOT NULL,
	potential_savings_entertainment DOUBLE PRECISION NOT NULL,
	potential_savings_utilities DOUBLE PRECISION NOT NULL,
	potential_savings_healthcare DOUBLE PRECISION NOT NULL,
	potential_savings_education DOUBLE PRECISION NOT NULL,
	potential_savings_miscellaneous DOUBLE PRECISION NOT NULL,

	occupation_retired SMALLINT NOT NULL,
	occupation_self_employed SMALLINT NOT NULL,
	occupation_student SMALLINT NOT NULL,
	city_tier_tier_2 SMALLINT NOT NULL,
	city_tier_tier_3 SMALLINT NOT NULL,
	age_group_young_adult SMALLINT NOT NULL,
	age_group_mid_career SMALLINT NOT NULL,
	age_group_pre_retirement SMALLINT NOT NULL,
	age_group_senior SMALLINT NOT NULL,
	income_bracket_low_income SMALLINT NOT NULL,
	income_bracket_lower_mid SMALLINT NOT NULL,
	income_bracket_middle SMALLINT NOT NULL,
	income_bracket_upper_mid SMALLINT NOT NULL,
	savings_difficulty_moderate SMALLINT NOT NULL,
	savings_difficulty_very_hard SMALLINT NOT NULL,
	savings_difficulty_nan SMALLINT NOT NULL,

	savings_model_can_achieve BOOLEAN NOT NULL,
	savings_model_confidence DOUBLE PRECISION NOT NULL,
	amount_model_recommended_savings DOUBLE PRECISION NOT NULL,
	multi_task_can_achieve BOOLEAN NOT NULL,
	multi_task_savings_confidence DOUBLE PRECISION NOT NULL,
	multi_task_recommended_amount DOUBLE PRECISION NOT NULL,
	multi_task_financial_risk BOOLEAN NOT NULL,
	multi_task_risk_score DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions (timestamp DESC);
`
