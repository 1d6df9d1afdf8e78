package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flight-delay-service/internal/domain"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// HistoryStore keeps delay reports in a SQLite database.
type HistoryStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and prepares the schema.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &HistoryStore{db: db, logger: logger}
	if err := s.initDB(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("history store ready", "path", path)
	return s, nil
}

func (s *HistoryStore) initDB(ctx context.Context) error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS delay_reports (
			id TEXT PRIMARY KEY,
			airport TEXT NOT NULL,
			score INTEGER NOT NULL,
			level TEXT NOT NULL,
			checked_at INTEGER NOT NULL,
			report TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_delay_reports_airport ON delay_reports(airport, checked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_delay_reports_checked_at ON delay_reports(checked_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

// Save stores one report. Saving the same ID twice keeps the first copy.
func (s *HistoryStore) Save(ctx context.Context, report domain.DelayReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO delay_reports (id, airport, score, level, checked_at, report)
		VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Airport.Code,
		report.Assessment.Score,
		string(report.Assessment.Level),
		report.CheckedAt.UnixMilli(),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", report.ID, err)
	}
	return nil
}

// Recent returns up to limit reports, newest first. An empty airport matches all.
func (s *HistoryStore) Recent(ctx context.Context, airport string, limit int) ([]domain.DelayReport, error) {
	query := `SELECT report FROM delay_reports`
	args := []any{}
	if airport != "" {
		query += ` WHERE airport = ?`
		args = append(args, airport)
	}
	query += ` ORDER BY checked_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := []domain.DelayReport{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var r domain.DelayReport
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			s.logger.Warn("skipping unreadable report", "error", err)
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// CheckReadiness pings the database.
func (s *HistoryStore) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("history db: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
