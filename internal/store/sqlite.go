package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/openroomhq/openroom/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/openroom.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/openroom.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist. AUTOINCREMENT on seq keeps
// insertion order stable even after deletes.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		name TEXT NOT NULL,
		last_status INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		from_name TEXT NOT NULL,
		to_name TEXT NOT NULL,
		text TEXT NOT NULL,
		type TEXT NOT NULL,
		time TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_participants_name ON participants(name);
	CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_name);
	CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_name);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListParticipants returns all participants.
func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, last_status FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.Name, &p.LastStatus); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// GetParticipant retrieves a participant by name.
func (s *SQLiteStore) GetParticipant(ctx context.Context, name string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, last_status FROM participants WHERE name = ? LIMIT 1
	`, name).Scan(&p.Name, &p.LastStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// InsertParticipant inserts a participant record.
func (s *SQLiteStore) InsertParticipant(ctx context.Context, p *models.Participant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (name, last_status) VALUES (?, ?)
	`, p.Name, p.LastStatus)
	return err
}

// UpdateParticipantStatus sets a participant's last_status.
func (s *SQLiteStore) UpdateParticipantStatus(ctx context.Context, name string, lastStatus int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE participants SET last_status = ? WHERE name = ?
	`, lastStatus, name)
	return err
}

// DeleteParticipant removes a participant by name.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE name = ?`, name)
	return err
}

// InsertMessage inserts a message, assigning a ULID.
func (s *SQLiteStore) InsertMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, from_name, to_name, text, type, time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.From, m.To, m.Text, m.Type, m.Time)
	return err
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	m := &models.Message{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_name, to_name, text, type, time FROM messages WHERE id = ?
	`, id).Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Type, &m.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListVisibleMessages returns messages visible to the viewer in insertion
// order.
func (s *SQLiteStore) ListVisibleMessages(ctx context.Context, viewer, broadcast string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_name, to_name, text, type, time
		FROM messages
		WHERE type = ? OR to_name = ? OR to_name = ? OR from_name = ?
		ORDER BY seq ASC
	`, models.TypeMessage, broadcast, viewer, viewer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Type, &m.Time); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateMessage replaces to/text/type in place.
func (s *SQLiteStore) UpdateMessage(ctx context.Context, id, to, text, msgType string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET to_name = ?, text = ?, type = ? WHERE id = ?
	`, to, text, msgType, id)
	return err
}

// DeleteMessage removes a message by ID.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	return err
}
