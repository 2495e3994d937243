package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroomhq/openroom/internal/models"
	"github.com/openroomhq/openroom/internal/store"
)

// Ledger owns message creation, audience-scoped retrieval and
// ownership-gated edit/delete.
type Ledger struct {
	store store.RecordStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewLedger creates a message ledger backed by the given store.
func NewLedger(st store.RecordStore, logger zerolog.Logger) *Ledger {
	return &Ledger{store: st, log: logger, now: time.Now}
}

// validMessageType reports whether a human-authored message may carry t.
// Status messages are system-generated only.
func validMessageType(t string) bool {
	return t == models.TypeMessage || t == models.TypePrivate
}

// Post appends a message from a registered participant. Posting is not a
// heartbeat: the sender's lastStatus is untouched.
func (l *Ledger) Post(ctx context.Context, from, to, text, msgType string) (*models.Message, error) {
	if to == "" || text == "" {
		return nil, fmt.Errorf("%w: to and text are required", ErrInvalidInput)
	}
	if !validMessageType(msgType) {
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, models.TypeMessage, models.TypePrivate)
	}

	sender, err := l.store.GetParticipant(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("lookup sender: %w", err)
	}
	if sender == nil {
		return nil, fmt.Errorf("%w: sender %q is not registered", ErrInvalidInput, from)
	}

	m := &models.Message{
		From: from,
		To:   to,
		Text: text,
		Type: msgType,
		Time: l.now().Format(clockFormat),
	}
	if err := l.store.InsertMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// ListVisible returns, in insertion order, the messages the viewer may see:
// public posts plus anything addressed to the broadcast audience, to the
// viewer, or sent by the viewer. A positive limit truncates to the last
// limit entries; a limit beyond the visible count returns everything.
func (l *Ledger) ListVisible(ctx context.Context, viewer string, limit int) ([]models.Message, error) {
	messages, err := l.store.ListVisibleMessages(ctx, viewer, Broadcast)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	if limit > 0 && limit <= len(messages) {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// Edit replaces a message's to/text/type in place. Only the original author
// may edit; id, from and insertion order are immutable. Returns ErrNotFound
// if the message does not exist or the requester is not registered, and
// ErrForbidden if the requester did not author the message.
func (l *Ledger) Edit(ctx context.Context, id, requester, to, text, msgType string) error {
	if to == "" || text == "" {
		return fmt.Errorf("%w: to and text are required", ErrInvalidInput)
	}
	if !validMessageType(msgType) {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, models.TypeMessage, models.TypePrivate)
	}

	requesterRecord, err := l.store.GetParticipant(ctx, requester)
	if err != nil {
		return fmt.Errorf("lookup requester: %w", err)
	}
	if requesterRecord == nil {
		return ErrNotFound
	}

	m, err := l.store.GetMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup message: %w", err)
	}
	if m == nil {
		return ErrNotFound
	}
	if m.From != requester {
		return ErrForbidden
	}

	if err := l.store.UpdateMessage(ctx, id, to, text, msgType); err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

// Delete permanently removes a message. The ownership gate matches Edit: the
// claimed requester must equal the stored author.
func (l *Ledger) Delete(ctx context.Context, id, requester string) error {
	m, err := l.store.GetMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup message: %w", err)
	}
	if m == nil {
		return ErrNotFound
	}
	if m.From != requester {
		return ErrForbidden
	}

	if err := l.store.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
