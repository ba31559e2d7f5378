package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/ops-cockpit/internal/pipeline"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database. The pool is pinned to one connection so
// an in-memory database is shared by every query of the store.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scenarios (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scenarios_name ON scenarios(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveScenario(ctx context.Context, res pipeline.ScenarioResult) (*SavedScenario, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal scenario")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, name, result, created_at) VALUES (?, ?, ?, ?)`,
		id, res.Scenario.Name, string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert scenario")
	}

	return &SavedScenario{ID: id, Result: res, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetScenario(ctx context.Context, id string) (*SavedScenario, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, result, created_at FROM scenarios WHERE id = ?`, id,
	)
	return scanScenario(row)
}

func (s *SQLiteStore) ListScenarios(ctx context.Context, filter ScenarioFilter) ([]SavedScenario, error) {
	query := `SELECT id, result, created_at FROM scenarios WHERE 1=1`
	var args []any

	if filter.Name != "" {
		query += ` AND name = ?`
		args = append(args, filter.Name)
	}
	query += ` ORDER BY rowid`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scenarios")
	}
	defer rows.Close() //nolint:errcheck

	var out []SavedScenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list scenarios iterate")
}

func (s *SQLiteStore) DeleteScenario(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete scenario %s", id)
	}
	return checkRowsAffected(res, "scenario", id)
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanScenario(row scannable) (*SavedScenario, error) {
	var sc SavedScenario
	var resultJSON string

	err := row.Scan(&sc.ID, &resultJSON, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("scenario not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan scenario")
	}

	if err := json.Unmarshal([]byte(resultJSON), &sc.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal scenario")
	}
	return &sc, nil
}
