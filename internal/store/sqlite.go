package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/qrystalml/enron-summary/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", fmt.Errorf("new run id: %w", err)
	}
	return id.String(), nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		input       TEXT NOT NULL,
		timezone    TEXT NOT NULL DEFAULT 'UTC',
		delimiter   TEXT NOT NULL DEFAULT '|',
		events      INTEGER NOT NULL DEFAULT 0,
		flat_rows   INTEGER NOT NULL DEFAULT 0,
		messages    INTEGER NOT NULL DEFAULT 0,
		skipped     INTEGER NOT NULL DEFAULT 0,
		people      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS person_counts (
		run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq      INTEGER NOT NULL,
		person   TEXT NOT NULL,
		sent     INTEGER NOT NULL,
		received INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS monthly_sent (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq    INTEGER NOT NULL,
		person TEXT NOT NULL,
		month  TEXT NOT NULL,
		sent   INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS monthly_shares (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq    INTEGER NOT NULL,
		person TEXT NOT NULL,
		month  TEXT NOT NULL,
		share  REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveRun(ctx context.Context, p RunParams) (*model.Run, error) {
	now := time.Now().UTC()
	id, err := s.newID(now)
	if err != nil {
		return nil, err
	}
	return s.insertRun(ctx, id, now, p)
}

func (s *SQLiteStore) insertRun(ctx context.Context, id string, createdAt time.Time, p RunParams) (*model.Run, error) {
	var peopleJSON *string
	if len(p.People) > 0 {
		b, _ := json.Marshal(p.People)
		s := string(b)
		peopleJSON = &s
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, input, timezone, delimiter, events, flat_rows, messages, skipped, people)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, createdAt.UTC().Format(timeFormat), p.Input, p.Timezone, p.Delimiter,
		p.Events, p.FlatRows, p.Messages, p.Skipped, peopleJSON)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	if err := insertRows(ctx, tx,
		`INSERT INTO person_counts (run_id, seq, person, sent, received) VALUES (?, ?, ?, ?, ?)`,
		len(p.Counts), func(i int) []any {
			c := p.Counts[i]
			return []any{id, i, c.Person, c.Sent, c.Received}
		}); err != nil {
		return nil, fmt.Errorf("insert counts: %w", err)
	}

	if err := insertRows(ctx, tx,
		`INSERT INTO monthly_sent (run_id, seq, person, month, sent) VALUES (?, ?, ?, ?, ?)`,
		len(p.Sent), func(i int) []any {
			r := p.Sent[i]
			return []any{id, i, r.Person, r.Month.String(), r.Sent}
		}); err != nil {
		return nil, fmt.Errorf("insert monthly sent: %w", err)
	}

	if err := insertRows(ctx, tx,
		`INSERT INTO monthly_shares (run_id, seq, person, month, share) VALUES (?, ?, ?, ?, ?)`,
		len(p.Contacts), func(i int) []any {
			r := p.Contacts[i]
			return []any{id, i, r.Person, r.Month.String(), r.Share}
		}); err != nil {
		return nil, fmt.Errorf("insert monthly shares: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Run{
		ID:        id,
		CreatedAt: createdAt,
		Input:     p.Input,
		Timezone:  p.Timezone,
		Delimiter: p.Delimiter,
		Events:    p.Events,
		FlatRows:  p.FlatRows,
		Messages:  p.Messages,
		Skipped:   p.Skipped,
		People:    p.People,
		Counts:    p.Counts,
		Sent:      p.Sent,
		Contacts:  p.Contacts,
	}, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, n int, args func(int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

const runColumns = `id, created_at, input, timezone, delimiter, events, flat_rows, messages, skipped, people`

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var row *sql.Row
	if id == "" || id == Latest {
		row = s.db.QueryRowContext(ctx,
			`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	}

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if run.Counts, err = s.counts(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Sent, err = s.monthlySent(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Contacts, err = s.monthlyShares(ctx, run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) counts(ctx context.Context, runID string) ([]model.PersonCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT person, sent, received FROM person_counts WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PersonCount
	for rows.Next() {
		var c model.PersonCount
		if err := rows.Scan(&c.Person, &c.Sent, &c.Received); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) monthlySent(ctx context.Context, runID string) ([]model.MonthlySent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT person, month, sent FROM monthly_sent WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MonthlySent
	for rows.Next() {
		var r model.MonthlySent
		var month string
		if err := rows.Scan(&r.Person, &month, &r.Sent); err != nil {
			return nil, err
		}
		if r.Month, err = model.ParseMonth(month); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) monthlyShares(ctx context.Context, runID string) ([]model.MonthlyShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT person, month, share FROM monthly_shares WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MonthlyShare
	for rows.Next() {
		var r model.MonthlyShare
		var month string
		if err := rows.Scan(&r.Person, &month, &r.Share); err != nil {
			return nil, err
		}
		if r.Month, err = model.ParseMonth(month); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var createdAt string
	var people sql.NullString

	err := row.Scan(
		&r.ID, &createdAt, &r.Input, &r.Timezone, &r.Delimiter,
		&r.Events, &r.FlatRows, &r.Messages, &r.Skipped, &people,
	)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	if people.Valid {
		json.Unmarshal([]byte(people.String), &r.People)
	}
	return r, nil
}
