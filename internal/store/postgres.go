package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/openroomhq/openroom/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool and
// bootstraps the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist. Participant names carry no
// unique constraint: uniqueness is checked by the presence registry before
// insert, and the resulting race window is tolerated.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		name TEXT NOT NULL,
		last_status BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq BIGSERIAL PRIMARY KEY,
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

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ListParticipants returns all participants.
func (s *PostgresStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, last_status FROM participants`)
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
func (s *PostgresStore) GetParticipant(ctx context.Context, name string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.pool.QueryRow(ctx, `
		SELECT name, last_status FROM participants WHERE name = $1 LIMIT 1
	`, name).Scan(&p.Name, &p.LastStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// InsertParticipant inserts a participant record.
func (s *PostgresStore) InsertParticipant(ctx context.Context, p *models.Participant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (name, last_status) VALUES ($1, $2)
	`, p.Name, p.LastStatus)
	return err
}

// UpdateParticipantStatus sets a participant's last_status.
func (s *PostgresStore) UpdateParticipantStatus(ctx context.Context, name string, lastStatus int64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE participants SET last_status = $1 WHERE name = $2
	`, lastStatus, name)
	return err
}

// DeleteParticipant removes a participant by name.
func (s *PostgresStore) DeleteParticipant(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM participants WHERE name = $1`, name)
	return err
}

// InsertMessage inserts a message, assigning a ULID.
func (s *PostgresStore) InsertMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, from_name, to_name, text, type, time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.From, m.To, m.Text, m.Type, m.Time)
	return err
}

// GetMessage retrieves a message by ID.
func (s *PostgresStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	m := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, from_name, to_name, text, type, time FROM messages WHERE id = $1
	`, id).Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Type, &m.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListVisibleMessages returns messages visible to the viewer in insertion
// order.
func (s *PostgresStore) ListVisibleMessages(ctx context.Context, viewer, broadcast string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, from_name, to_name, text, type, time
		FROM messages
		WHERE type = $1 OR to_name = $2 OR to_name = $3 OR from_name = $3
		ORDER BY seq ASC
	`, models.TypeMessage, broadcast, viewer)
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

// UpdateMessage replaces to/text/type in place. Seq (and with it retrieval
// order) is untouched.
func (s *PostgresStore) UpdateMessage(ctx context.Context, id, to, text, msgType string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messages SET to_name = $1, text = $2, type = $3 WHERE id = $4
	`, to, text, msgType, id)
	return err
}

// DeleteMessage removes a message by ID.
func (s *PostgresStore) DeleteMessage(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}
