package store

import (
	"context"

	"github.com/openroomhq/openroom/internal/models"
)

// RecordStore defines the interface for persistent storage of participants
// and messages. MongoStore, PostgresStore, SQLiteStore and MemoryStore all
// implement this interface. Lookup methods return (nil, nil) when no record
// matches; chat-level semantics (uniqueness, ownership, visibility rules)
// are enforced by the callers, not here.
type RecordStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Participant operations
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	GetParticipant(ctx context.Context, name string) (*models.Participant, error)
	InsertParticipant(ctx context.Context, p *models.Participant) error
	UpdateParticipantStatus(ctx context.Context, name string, lastStatus int64) error
	DeleteParticipant(ctx context.Context, name string) error

	// Message operations. InsertMessage assigns Message.ID. ListVisibleMessages
	// returns, in insertion order, public messages plus anything addressed to
	// the broadcast audience, to the viewer, or sent by the viewer.
	InsertMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	ListVisibleMessages(ctx context.Context, viewer, broadcast string) ([]models.Message, error)
	UpdateMessage(ctx context.Context, id, to, text, msgType string) error
	DeleteMessage(ctx context.Context, id string) error
}
