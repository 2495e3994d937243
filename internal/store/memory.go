package store

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/openroomhq/openroom/internal/models"
)

// MemoryStore is a mutex-protected in-memory RecordStore used for tests and
// zero-configuration development runs. The messages slice preserves insertion
// order; edits rewrite entries in place.
type MemoryStore struct {
	mu           sync.RWMutex
	participants []models.Participant
	messages     []models.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// ListParticipants returns a copy of all participants.
func (s *MemoryStore) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Participant, len(s.participants))
	copy(out, s.participants)
	return out, nil
}

// GetParticipant retrieves a participant by name.
func (s *MemoryStore) GetParticipant(ctx context.Context, name string) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.participants {
		if s.participants[i].Name == name {
			p := s.participants[i]
			return &p, nil
		}
	}
	return nil, nil
}

// InsertParticipant appends a participant record.
func (s *MemoryStore) InsertParticipant(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = append(s.participants, *p)
	return nil
}

// UpdateParticipantStatus sets a participant's lastStatus.
func (s *MemoryStore) UpdateParticipantStatus(ctx context.Context, name string, lastStatus int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].Name == name {
			s.participants[i].LastStatus = lastStatus
			return nil
		}
	}
	return nil
}

// DeleteParticipant removes the first participant with the given name.
func (s *MemoryStore) DeleteParticipant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].Name == name {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return nil
		}
	}
	return nil
}

// InsertMessage appends a message, assigning a ULID.
func (s *MemoryStore) InsertMessage(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	s.messages = append(s.messages, *m)
	return nil
}

// GetMessage retrieves a message by ID.
func (s *MemoryStore) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			m := s.messages[i]
			return &m, nil
		}
	}
	return nil, nil
}

// ListVisibleMessages returns messages visible to the viewer in insertion
// order.
func (s *MemoryStore) ListVisibleMessages(ctx context.Context, viewer, broadcast string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.Type == models.TypeMessage || m.To == broadcast || m.To == viewer || m.From == viewer {
			out = append(out, m)
		}
	}
	return out, nil
}

// UpdateMessage replaces to/text/type in place, keeping slice position.
func (s *MemoryStore) UpdateMessage(ctx context.Context, id, to, text, msgType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].To = to
			s.messages[i].Text = text
			s.messages[i].Type = msgType
			return nil
		}
	}
	return nil
}

// DeleteMessage removes a message by ID.
func (s *MemoryStore) DeleteMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return nil
}
