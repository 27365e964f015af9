package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vitalvas/mathtrace/series"
	"github.com/vitalvas/mathtrace/xlogger"
)

// SQLiteRecorder persists traces to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database at dbPath and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers query traces while a save is in progress.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: xlogger.OrDiscard(logger),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS traces (
			name        TEXT PRIMARY KEY,
			expression  TEXT NOT NULL,
			variables   TEXT NOT NULL,
			points      INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS trace_points (
			trace       TEXT NOT NULL REFERENCES traces(name) ON DELETE CASCADE,
			timestamp   REAL NOT NULL,
			value       REAL NOT NULL,
			PRIMARY KEY (trace, timestamp)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) SaveTrace(ctx context.Context, trace *series.Computed) error {
	if trace == nil {
		return errors.New("trace is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	points := trace.Points()

	variables := make([]string, 0, len(trace.Inputs()))
	for name := range trace.Inputs() {
		variables = append(variables, name)
	}
	sort.Strings(variables)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO traces (name, expression, variables, points, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			expression = excluded.expression,
			variables  = excluded.variables,
			points     = excluded.points,
			updated_at = excluded.updated_at`,
		trace.Label(), trace.Expression(), strings.Join(variables, ","), len(points), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert trace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trace_points WHERE trace = ?`, trace.Label()); err != nil {
		return fmt.Errorf("delete points: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO trace_points (trace, timestamp, value) VALUES (?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, trace.Label(), p.Timestamp, p.Value); err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("trace recorded", "trace", trace.Label(), "points", len(points))
	return nil
}

func (r *SQLiteRecorder) LoadTrace(ctx context.Context, name string) (*series.Series, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT points FROM traces WHERE name = ?`, name).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, value FROM trace_points WHERE trace = ? ORDER BY timestamp`, name)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	timestamps := make([]float64, 0, count)
	values := make([]float64, 0, count)
	for rows.Next() {
		var t, v float64
		if err := rows.Scan(&t, &v); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		timestamps = append(timestamps, t)
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read points: %w", err)
	}

	return series.FromPoints(name, timestamps, values)
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
