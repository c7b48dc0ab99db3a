package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
)

// Default timeout for store operations.
const defaultTimeout = 5 * time.Second

// Conversion is one recorded render request.
type Conversion struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"` // "image" or "video"
	SourcePath string    `json:"sourcePath"`
	OutputPath string    `json:"outputPath"`
	Width      int       `json:"width"`
	Color      bool      `json:"color"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store keeps a log of conversions in a SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the history database at dbPath. The parent
// directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Store, error) {
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after init failure: %v", closeErr)
		}
		metrics.HistoryQueriesTotal.WithLabelValues("initialize_schema", "error").Inc()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	metrics.HistoryQueriesTotal.WithLabelValues("initialize_schema", "success").Inc()

	logging.Info("History store initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		source_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		width INTEGER NOT NULL,
		color INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at DESC);
	`

	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(initCtx, schema)
	return err
}

// Record appends a conversion to the log.
func (s *Store) Record(ctx context.Context, c Conversion) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(opCtx,
		`INSERT INTO conversions (kind, source_path, output_path, width, color, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Kind, c.SourcePath, c.OutputPath, c.Width, c.Color, time.Now().Unix(),
	)
	if err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("record", "error").Inc()
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	metrics.HistoryQueriesTotal.WithLabelValues("record", "success").Inc()
	return nil
}

// Recent returns up to limit conversions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 50
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(opCtx,
		`SELECT id, kind, source_path, output_path, width, color, created_at
		 FROM conversions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("recent", "error").Inc()
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close history rows: %v", err)
		}
	}()

	var result []Conversion
	for rows.Next() {
		var c Conversion
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Kind, &c.SourcePath, &c.OutputPath,
			&c.Width, &c.Color, &createdAt); err != nil {
			metrics.HistoryQueriesTotal.WithLabelValues("recent", "error").Inc()
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		metrics.HistoryQueriesTotal.WithLabelValues("recent", "error").Inc()
		return nil, err
	}

	metrics.HistoryQueriesTotal.WithLabelValues("recent", "success").Inc()
	return result, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
