package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/region23/calendar/internal/storage/models"
	"github.com/region23/calendar/pkg/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStorage реализует интерфейс Storage для SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New создает новое подключение к SQLite базе данных
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.ErrDatabaseConnection.WithError(err)
	}

	// SQLite поддерживает только одно write-подключение
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	storage := &SQLiteStorage{db: db}

	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return storage, nil
}

// migrate выполняет миграции базы данных
func (s *SQLiteStorage) migrate() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			chat_id INTEGER PRIMARY KEY,
			message_id INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}

	return nil
}

// Close закрывает подключение к базе данных
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping проверяет подключение к базе данных
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession получает сессию по chat_id
func (s *SQLiteStorage) GetSession(ctx context.Context, chatID int64) (*models.Session, bool, error) {
	query := `SELECT chat_id, message_id, state, created_at, updated_at
			  FROM sessions WHERE chat_id = ?`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get session: %w", err)
	}

	return session, true, nil
}

// SaveSession создает или обновляет сессию. CreatedAt сохраняется при обновлении.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session *models.Session) error {
	state, err := json.Marshal(session.State)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	query := `INSERT INTO sessions (chat_id, message_id, state, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(chat_id) DO UPDATE SET
				message_id = excluded.message_id,
				state = excluded.state,
				updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		session.ChatID, session.MessageID, string(state),
		session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию; отсутствие сессии не считается ошибкой
func (s *SQLiteStorage) DeleteSession(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions возвращает все сессии, старые первыми
func (s *SQLiteStorage) ListSessions(ctx context.Context) ([]*models.Session, error) {
	query := `SELECT chat_id, message_id, state, created_at, updated_at
			  FROM sessions ORDER BY updated_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// DeleteIdleSessions удаляет сессии, не обновлявшиеся с момента before
func (s *SQLiteStorage) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// CountSessions возвращает количество активных сессий
func (s *SQLiteStorage) CountSessions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		session   models.Session
		state     string
		createdAt int64
		updatedAt int64
	)

	if err := row.Scan(&session.ChatID, &session.MessageID, &state, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &session.State); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}

	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)
	return &session, nil
}
