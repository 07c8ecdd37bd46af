// Package store persists measurement summaries in SQLite so repeated runs
// over a batch of micrographs can be compared later.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ironsheep/fiducial-tools-mcp/internal/detection"
)

// Record is one stored measurement.
type Record struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`

	RealWidth     float64 `json:"real_width"`
	Unit          string  `json:"unit"`
	PixelsPerUnit float64 `json:"pixels_per_unit"`

	HorizontalMarks    [2]int  `json:"horizontal_marks"`
	HorizontalDistance float64 `json:"horizontal_distance"`
	VerticalMarks      [2]int  `json:"vertical_marks"`
	VerticalDistance   float64 `json:"vertical_distance"`
}

// NewRecord summarises a measurement of the image at path.
func NewRecord(path string, m *detection.Measurement, at time.Time) *Record {
	return &Record{
		Path:               path,
		CreatedAt:          at.UTC(),
		RealWidth:          m.RealWidth,
		Unit:               m.Calibration.Unit,
		PixelsPerUnit:      m.Calibration.PixelsPerUnit,
		HorizontalMarks:    m.Horizontal.Absolute,
		HorizontalDistance: m.Horizontal.Distance,
		VerticalMarks:      m.Vertical.Absolute,
		VerticalDistance:   m.Vertical.Distance,
	}
}

// Store wraps the SQLite connection. Writes are serialised.
type Store struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		real_width REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		pixels_per_unit REAL NOT NULL,
		h_mark1 INTEGER NOT NULL,
		h_mark2 INTEGER NOT NULL,
		h_distance REAL NOT NULL,
		v_mark1 INTEGER NOT NULL,
		v_mark2 INTEGER NOT NULL,
		v_distance REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_path ON measurements(path);
	CREATE INDEX IF NOT EXISTS idx_measurements_created_at ON measurements(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Insert stores rec and sets its ID.
func (s *Store) Insert(ctx context.Context, rec *Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO measurements (path, created_at, real_width, unit, pixels_per_unit,
			h_mark1, h_mark2, h_distance, v_mark1, v_mark2, v_distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Path, rec.CreatedAt, rec.RealWidth, rec.Unit, rec.PixelsPerUnit,
		rec.HorizontalMarks[0], rec.HorizontalMarks[1], rec.HorizontalDistance,
		rec.VerticalMarks[0], rec.VerticalMarks[1], rec.VerticalDistance)
	if err != nil {
		return 0, fmt.Errorf("failed to insert measurement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

// Recent returns up to limit records, newest first. A non-empty path
// restricts the result to that image.
func (s *Store) Recent(ctx context.Context, path string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, path, created_at, real_width, unit, pixels_per_unit,
			h_mark1, h_mark2, h_distance, v_mark1, v_mark2, v_distance
		FROM measurements`
	args := []interface{}{}
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Path, &r.CreatedAt, &r.RealWidth, &r.Unit, &r.PixelsPerUnit,
			&r.HorizontalMarks[0], &r.HorizontalMarks[1], &r.HorizontalDistance,
			&r.VerticalMarks[0], &r.VerticalMarks[1], &r.VerticalDistance); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
