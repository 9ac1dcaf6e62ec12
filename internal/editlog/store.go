package editlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediabuddy/internal/logging"
	"mediabuddy/internal/services"
)

const (
	defaultHistoryWindow = 50
	defaultSignificant   = 0.3
	// timeLayout keeps a fixed fraction width so stored timestamps sort
	// lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Options configures a Store.
type Options struct {
	// HistoryWindow is how many recent sessions feed the length preference.
	HistoryWindow int
	// SignificantMagnitude marks sessions whose edited text is kept as an
	// example.
	SignificantMagnitude float64
	Logger               *slog.Logger
	Now                  func() time.Time
}

// Session is one recorded edit.
type Session struct {
	ID          string
	CreatedAt   time.Time
	Topic       string
	Mode        string
	RequestID   string
	Original    string
	Edited      string
	Analysis    Analysis
	Significant bool
}

// SessionInput is what the caller supplies to Record.
type SessionInput struct {
	Topic     string
	Mode      string
	RequestID string
	Original  string
	Edited    string
}

// Store persists edit sessions in SQLite.
type Store struct {
	db          *sql.DB
	path        string
	window      int
	significant float64
	logger      *slog.Logger
	now         func() time.Time
}

// Open creates or connects to the edit database at path and applies
// migrations.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "editlog", "open", "database path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create edit log directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = defaultHistoryWindow
	}
	if opts.SignificantMagnitude <= 0 {
		opts.SignificantMagnitude = defaultSignificant
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	store := &Store{
		db:          db,
		path:        path,
		window:      opts.HistoryWindow,
		significant: opts.SignificantMagnitude,
		logger:      logging.NewComponentLogger(opts.Logger, "editlog"),
		now:         opts.Now,
	}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record analyzes and stores one edit session.
func (s *Store) Record(ctx context.Context, in SessionInput) (Session, error) {
	if strings.TrimSpace(in.Original) == "" || strings.TrimSpace(in.Edited) == "" {
		return Session{}, services.Wrap(services.ErrInvalidInput, "editlog", "record", "generated and edited text are both required", nil)
	}
	analysis := Analyze(in.Original, in.Edited)
	session := Session{
		ID:          uuid.NewString(),
		CreatedAt:   s.now().UTC(),
		Topic:       strings.TrimSpace(in.Topic),
		Mode:        strings.TrimSpace(in.Mode),
		RequestID:   strings.TrimSpace(in.RequestID),
		Original:    in.Original,
		Edited:      in.Edited,
		Analysis:    analysis,
		Significant: analysis.Magnitude > s.significant,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO edit_sessions (
            id, created_at, topic, mode, request_id, original_text, edited_text,
            original_words, edited_words, length_ratio, similarity, magnitude, significant
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.CreatedAt.Format(timeLayout),
		session.Topic,
		nullableString(session.Mode),
		nullableString(session.RequestID),
		session.Original,
		session.Edited,
		analysis.OriginalWords,
		analysis.EditedWords,
		analysis.LengthRatio,
		analysis.Similarity,
		analysis.Magnitude,
		boolToInt(session.Significant),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert edit session: %w", err)
	}
	for _, editType := range analysis.EditTypes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO edit_session_types (session_id, edit_type) VALUES (?, ?)`, session.ID, string(editType)); err != nil {
			return Session{}, fmt.Errorf("insert edit type: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("commit edit session: %w", err)
	}

	s.logger.Info("recorded edit session",
		logging.String("session_id", session.ID),
		logging.Float64("magnitude", analysis.Magnitude),
		logging.Float64("length_ratio", analysis.LengthRatio),
		logging.Int("edit_types", len(analysis.EditTypes)))
	return session, nil
}

const sessionColumns = "id, created_at, topic, mode, request_id, original_text, edited_text, original_words, edited_words, length_ratio, similarity, magnitude, significant"

// Get returns one session by id.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM edit_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, services.Wrap(services.ErrNotFound, "editlog", "get", fmt.Sprintf("no edit session %q", id), nil)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get edit session: %w", err)
	}
	if err := s.loadTypes(ctx, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	return s.list(ctx, `SELECT `+sessionColumns+` FROM edit_sessions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
}

// Examples returns up to limit significantly edited sessions, newest first.
func (s *Store) Examples(ctx context.Context, limit int) ([]Session, error) {
	return s.list(ctx, `SELECT `+sessionColumns+` FROM edit_sessions WHERE significant = 1 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
}

// Count returns how many sessions are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM edit_sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count edit sessions: %w", err)
	}
	return n, nil
}

func (s *Store) list(ctx context.Context, query string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = s.window
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list edit sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edit session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edit sessions: %w", err)
	}
	for i := range sessions {
		if err := s.loadTypes(ctx, &sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *Store) loadTypes(ctx context.Context, session *Session) error {
	rows, err := s.db.QueryContext(ctx, `SELECT edit_type FROM edit_session_types WHERE session_id = ? ORDER BY rowid`, session.ID)
	if err != nil {
		return fmt.Errorf("load edit types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var editType string
		if err := rows.Scan(&editType); err != nil {
			return fmt.Errorf("scan edit type: %w", err)
		}
		session.Analysis.EditTypes = append(session.Analysis.EditTypes, EditType(editType))
	}
	return rows.Err()
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (Session, error) {
	var (
		session     Session
		createdRaw  string
		mode        sql.NullString
		requestID   sql.NullString
		significant int
	)
	if err := scanner.Scan(
		&session.ID,
		&createdRaw,
		&session.Topic,
		&mode,
		&requestID,
		&session.Original,
		&session.Edited,
		&session.Analysis.OriginalWords,
		&session.Analysis.EditedWords,
		&session.Analysis.LengthRatio,
		&session.Analysis.Similarity,
		&session.Analysis.Magnitude,
		&significant,
	); err != nil {
		return Session{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		session.CreatedAt = ts
	}
	session.Mode = mode.String
	session.RequestID = requestID.String
	session.Significant = significant != 0
	session.Analysis.LengthChange = session.Analysis.EditedWords - session.Analysis.OriginalWords
	return session, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
