// Package chat implements the presence-and-visibility engine: participant
// lifecycle, message authorship and audience-scoped visibility, and
// ownership-gated mutation of messages.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroomhq/openroom/internal/models"
	"github.com/openroomhq/openroom/internal/store"
)

// Broadcast is the reserved recipient name meaning the whole room.
const Broadcast = "Todos"

// Join/leave notice bodies, kept byte-for-byte from the original product so
// existing clients render them unchanged.
const (
	joinedText = "entra na sala..."
	leftText   = "sai da sala..."
)

// clockFormat is the display format of Message.Time. Retrieval order comes
// from store insertion order, never from this field.
const clockFormat = "15:04:05"

// Registry owns participant lifecycle: registration, heartbeat refresh and
// timeout eviction.
type Registry struct {
	store store.RecordStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewRegistry creates a presence registry backed by the given store.
func NewRegistry(st store.RecordStore, logger zerolog.Logger) *Registry {
	return &Registry{store: st, log: logger, now: time.Now}
}

// Register creates a participant and announces the join to the room.
// Returns ErrConflict if the name is already registered.
//
// Uniqueness is an existence check followed by an insert: two concurrent
// registrations of the same name can both pass the check. The window is
// tolerated rather than locked away. If the join notice fails after the
// participant insert succeeded, the participant record is kept and the
// error is surfaced to the caller.
func (r *Registry) Register(ctx context.Context, name string) (*models.Participant, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	existing, err := r.store.GetParticipant(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup participant: %w", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	p := &models.Participant{
		Name:       name,
		LastStatus: r.now().UnixMilli(),
	}
	if err := r.store.InsertParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	notice := &models.Message{
		From: name,
		To:   Broadcast,
		Text: joinedText,
		Type: models.TypeStatus,
		Time: r.now().Format(clockFormat),
	}
	if err := r.store.InsertMessage(ctx, notice); err != nil {
		r.log.Error().Err(err).Str("name", name).Msg("join notice failed after registration")
		return nil, fmt.Errorf("insert join notice: %w", err)
	}

	r.log.Info().Str("name", name).Msg("participant registered")
	return p, nil
}

// Heartbeat refreshes a participant's liveness timestamp. Returns
// ErrNotFound if the name is not registered; the caller must re-register.
func (r *Registry) Heartbeat(ctx context.Context, name string) error {
	existing, err := r.store.GetParticipant(ctx, name)
	if err != nil {
		return fmt.Errorf("lookup participant: %w", err)
	}
	if existing == nil {
		return ErrNotFound
	}

	if err := r.store.UpdateParticipantStatus(ctx, name, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("update lastStatus: %w", err)
	}
	return nil
}

// EvictStale removes every participant whose last heartbeat is older than
// timeout and announces each departure to the room. A failure evicting one
// participant does not abort the sweep of the others. Returns the names
// evicted, in evaluation order.
func (r *Registry) EvictStale(ctx context.Context, now time.Time, timeout time.Duration) ([]string, error) {
	participants, err := r.store.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	var evicted []string
	for _, p := range participants {
		if now.UnixMilli()-p.LastStatus <= timeout.Milliseconds() {
			continue
		}

		if err := r.store.DeleteParticipant(ctx, p.Name); err != nil {
			r.log.Error().Err(err).Str("name", p.Name).Msg("eviction failed")
			continue
		}

		notice := &models.Message{
			From: p.Name,
			To:   Broadcast,
			Text: leftText,
			Type: models.TypeStatus,
			Time: now.Format(clockFormat),
		}
		if err := r.store.InsertMessage(ctx, notice); err != nil {
			// Participant is already gone; the missing notice is accepted.
			r.log.Error().Err(err).Str("name", p.Name).Msg("leave notice failed")
		}

		r.log.Info().Str("name", p.Name).Msg("participant evicted")
		evicted = append(evicted, p.Name)
	}

	return evicted, nil
}

// ListParticipants returns every registered participant.
func (r *Registry) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	return r.store.ListParticipants(ctx)
}
