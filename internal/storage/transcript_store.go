package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "github.com/tursodatabase/go-libsql"
)

// TranscriptStore defines operations for the local transcript archive.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, t *Transcript, messages []TranscriptMessage) error
	GetTranscript(ctx context.Context, sessionID string) (*Transcript, []TranscriptMessage, error)
	ListTranscripts(ctx context.Context, limit, offset int) ([]*TranscriptSummary, error)
	DeleteTranscript(ctx context.Context, sessionID string) error

	Close() error
}

// SQLiteTranscriptStore implements TranscriptStore using SQLite/libsql
type SQLiteTranscriptStore struct {
	db *sql.DB
}

// NewDefaultTranscriptStore creates a transcript store in the default data directory.
func NewDefaultTranscriptStore() (TranscriptStore, error) {
	dbPath, err := DefaultPathManager.GetTranscriptDatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript database path: %w", err)
	}
	return NewTranscriptStore(dbPath)
}

// NewTranscriptStore creates a transcript store at the given path.
func NewTranscriptStore(dbPath string) (TranscriptStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteTranscriptStore{db: db}

	// The libsql driver executes only the first statement of a
	// multi-statement Exec, so apply the schema one statement at a time.
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	log.Debug("transcript store initialized", "path", dbPath)
	return store, nil
}

// SaveTranscript archives a finished session and its messages in one transaction.
func (s *SQLiteTranscriptStore) SaveTranscript(ctx context.Context, t *Transcript, messages []TranscriptMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transcripts (session_id, register, score, started_at, finished_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Register, t.Score, t.StartedAt, t.FinishedAt, t.DurationMs)
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	for _, m := range messages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transcript_messages (id, session_id, role, content, feedback, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.SessionID, m.Role, m.Content, m.Feedback, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}
	return nil
}

// GetTranscript retrieves an archived session and its messages.
func (s *SQLiteTranscriptStore) GetTranscript(ctx context.Context, sessionID string) (*Transcript, []TranscriptMessage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, register, score, started_at, finished_at, duration_ms, message_count
		 FROM transcripts WHERE session_id = ?`, sessionID)

	var t Transcript
	err := row.Scan(&t.SessionID, &t.Register, &t.Score, &t.StartedAt, &t.FinishedAt, &t.DurationMs, &t.MessageCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("transcript not found: %s", sessionID)
		}
		return nil, nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, feedback, created_at
		 FROM transcript_messages WHERE session_id = ?
		 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []TranscriptMessage
	for rows.Next() {
		var m TranscriptMessage
		var feedback sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &feedback, &m.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Feedback = feedback.String
		messages = append(messages, m)
	}

	return &t, messages, nil
}

// ListTranscripts returns archived-session summaries, newest first.
func (s *SQLiteTranscriptStore) ListTranscripts(ctx context.Context, limit, offset int) ([]*TranscriptSummary, error) {
	query := `
		SELECT t.session_id, t.started_at, t.score, t.message_count,
		       COALESCE(m.content, '') as first_line
		FROM transcripts t
		LEFT JOIN (
			SELECT session_id, MIN(created_at) AS first_at, content
			FROM transcript_messages
			WHERE role = 'user'
			GROUP BY session_id
		) m ON t.session_id = m.session_id
		ORDER BY t.started_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var out []*TranscriptSummary
	for rows.Next() {
		var sum TranscriptSummary
		var firstLine sql.NullString
		if err := rows.Scan(&sum.SessionID, &sum.StartedAt, &sum.Score, &sum.MessageCount, &firstLine); err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		sum.FirstLine = firstLine.String
		out = append(out, &sum)
	}

	return out, nil
}

// DeleteTranscript deletes an archived session and all its messages.
func (s *SQLiteTranscriptStore) DeleteTranscript(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Messages are removed explicitly; SQLite leaves foreign_keys off by
	// default, so the schema's ON DELETE CASCADE alone is not enough.
	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteTranscriptStore) Close() error {
	return s.db.Close()
}

var schemaStatements = []string{`
CREATE TABLE IF NOT EXISTS transcripts (
    session_id TEXT PRIMARY KEY,
    register TEXT NOT NULL DEFAULT 'casual',
    score INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    message_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE(session_id)
);
`, `
CREATE TABLE IF NOT EXISTS transcript_messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
    content TEXT NOT NULL,
    feedback TEXT,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (session_id) REFERENCES transcripts(session_id) ON DELETE CASCADE,
    UNIQUE(id)
);
`, `
CREATE INDEX IF NOT EXISTS idx_transcripts_started_at ON transcripts(started_at DESC);
`, `
CREATE INDEX IF NOT EXISTS idx_transcript_messages_session_id ON transcript_messages(session_id);
`, `
CREATE TRIGGER IF NOT EXISTS update_transcript_message_count
    AFTER INSERT ON transcript_messages
    FOR EACH ROW
BEGIN
    UPDATE transcripts
    SET message_count = message_count + 1
    WHERE session_id = NEW.session_id;
END;
`}
