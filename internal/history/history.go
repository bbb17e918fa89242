package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ptforge/internal/config"
	"ptforge/internal/queue"
)

// Record is one archived terminal job.
type Record struct {
	ID           int64
	JobID        string
	Artist       string
	SongName     string
	ProjectName  string
	SessionFile  string
	Status       queue.Status
	ErrorMessage string
	QueuedAt     time.Time
	StartedAt    time.Time
	CompletedAt  time.Time
}

// DisplayName mirrors queue.Job's "Artist - Song" rendering.
func (r Record) DisplayName() string {
	return fmt.Sprintf("%s - %s", r.Artist, r.SongName)
}

// Duration returns the build time, zero when timestamps are missing.
func (r Record) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

const schema = `
CREATE TABLE IF NOT EXISTS job_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL,
    artist TEXT NOT NULL,
    song_name TEXT NOT NULL,
    project_name TEXT,
    session_file TEXT NOT NULL,
    status TEXT NOT NULL,
    error_message TEXT,
    queued_at TEXT NOT NULL,
    started_at TEXT,
    completed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_job_history_completed_at ON job_history(completed_at);
`

// Store archives terminal jobs in SQLite. The pending queue itself is
// never persisted; this is an append-only record of finished builds.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database. A nil store is
// returned (without error) when history is disabled.
func Open(cfg *config.Config) (*Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}

	dbPath := strings.TrimSpace(cfg.History.Path)
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Paths.LogDir, "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Archive inserts one terminal job. Non-terminal jobs are rejected.
func (s *Store) Archive(ctx context.Context, job *queue.Job) error {
	if s == nil || s.db == nil {
		return nil
	}
	if job == nil || !job.IsFinished() {
		return fmt.Errorf("history archive: job is not terminal")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_history (
            job_id, artist, song_name, project_name, session_file,
            status, error_message, queued_at, started_at, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Spec.Artist(),
		job.Spec.SongName(),
		nullable(job.Spec.ProjectName()),
		job.Spec.SessionFile(),
		string(job.Status),
		nullable(job.ErrorMessage),
		formatTime(job.QueuedAt),
		nullable(formatTime(job.StartedAt)),
		nullable(formatTime(job.CompletedAt)),
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, most recently completed first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, artist, song_name, project_name, session_file,
                status, error_message, queued_at, started_at, completed_at
         FROM job_history ORDER BY completed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec                               Record
			project, errMsg                   sql.NullString
			status                            string
			queuedAt, startedAt, completedAt sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.Artist, &rec.SongName,
			&project, &rec.SessionFile, &status, &errMsg,
			&queuedAt, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.ProjectName = project.String
		rec.ErrorMessage = errMsg.String
		rec.Status = queue.Status(status)
		rec.QueuedAt = parseTime(queuedAt.String)
		rec.StartedAt = parseTime(startedAt.String)
		rec.CompletedAt = parseTime(completedAt.String)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullable(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
