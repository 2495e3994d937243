package chat

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/openroomhq/openroom/internal/models"
	"github.com/openroomhq/openroom/internal/store"
)

func testRoom(t *testing.T, names ...string) (*Ledger, *Registry, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	reg := NewRegistry(st, zerolog.Nop())
	for _, name := range names {
		_, err := reg.Register(context.Background(), name)
		require.NoError(t, err)
	}
	return NewLedger(st, zerolog.Nop()), reg, st
}

func TestPost(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice")
	ctx := context.Background()

	msg, err := ledger.Post(ctx, "Alice", Broadcast, "hi", models.TypeMessage)
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "Alice", msg.From)
	require.Equal(t, Broadcast, msg.To)
}

func TestPostUnregisteredSender(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice")

	_, err := ledger.Post(context.Background(), "Mallory", Broadcast, "hi", models.TypeMessage)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPostInvalidType(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice")
	ctx := context.Background()

	// Status messages are system-generated only
	_, err := ledger.Post(ctx, "Alice", Broadcast, "hi", models.TypeStatus)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ledger.Post(ctx, "Alice", Broadcast, "hi", "shout")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPostEmptyFields(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice")
	ctx := context.Background()

	_, err := ledger.Post(ctx, "Alice", "", "hi", models.TypeMessage)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ledger.Post(ctx, "Alice", Broadcast, "", models.TypeMessage)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPostIsNotAHeartbeat(t *testing.T) {
	ledger, _, st := testRoom(t, "Alice")
	ctx := context.Background()

	before, err := st.GetParticipant(ctx, "Alice")
	require.NoError(t, err)

	_, err = ledger.Post(ctx, "Alice", Broadcast, "hi", models.TypeMessage)
	require.NoError(t, err)

	after, err := st.GetParticipant(ctx, "Alice")
	require.NoError(t, err)
	require.Equal(t, before.LastStatus, after.LastStatus)
}

func TestListVisibleUnion(t *testing.T) {
	ledger, _, _ := testRoom(t, "X", "Y", "Z")
	ctx := context.Background()

	_, err := ledger.Post(ctx, "Y", "X", "psst", models.TypePrivate)
	require.NoError(t, err)

	texts := func(viewer string) []string {
		messages, err := ledger.ListVisible(ctx, viewer, 0)
		require.NoError(t, err)
		var out []string
		for _, m := range messages {
			if m.Type == models.TypePrivate {
				out = append(out, m.Text)
			}
		}
		return out
	}

	require.Equal(t, []string{"psst"}, texts("X")) // recipient sees it
	require.Equal(t, []string{"psst"}, texts("Y")) // sender sees it
	require.Empty(t, texts("Z"))                   // third parties do not
}

func TestListVisibleIdempotent(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice", "Bob")
	ctx := context.Background()

	_, err := ledger.Post(ctx, "Alice", Broadcast, "one", models.TypeMessage)
	require.NoError(t, err)
	_, err = ledger.Post(ctx, "Bob", "Alice", "two", models.TypePrivate)
	require.NoError(t, err)

	first, err := ledger.ListVisible(ctx, "Alice", 0)
	require.NoError(t, err)
	second, err := ledger.ListVisible(ctx, "Alice", 0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestListVisibleLimit(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice")
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		_, err := ledger.Post(ctx, "Alice", Broadcast, text, models.TypeMessage)
		require.NoError(t, err)
	}

	// Registration notice + 4 posts are visible
	all, err := ledger.ListVisible(ctx, "Alice", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)

	// Last two, in original relative order
	last2, err := ledger.ListVisible(ctx, "Alice", 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	require.Equal(t, "c", last2[0].Text)
	require.Equal(t, "d", last2[1].Text)

	// A limit beyond the visible count returns everything unchanged
	over, err := ledger.ListVisible(ctx, "Alice", 50)
	require.NoError(t, err)
	require.Equal(t, all, over)
}

func TestEditOwnership(t *testing.T) {
	ledger, _, st := testRoom(t, "Alice", "Bob")
	ctx := context.Background()

	msg, err := ledger.Post(ctx, "Alice", Broadcast, "hi", models.TypeMessage)
	require.NoError(t, err)

	// Non-author is rejected regardless of audience
	err = ledger.Edit(ctx, msg.ID, "Bob", Broadcast, "hijacked", models.TypeMessage)
	require.ErrorIs(t, err, ErrForbidden)

	// Author succeeds; id, from and order survive the edit
	err = ledger.Edit(ctx, msg.ID, "Alice", "Bob", "hello", models.TypePrivate)
	require.NoError(t, err)

	edited, err := st.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.Equal(t, msg.ID, edited.ID)
	require.Equal(t, "Alice", edited.From)
	require.Equal(t, "Bob", edited.To)
	require.Equal(t, "hello", edited.Text)
	require.Equal(t, models.TypePrivate, edited.Type)

	visible, err := ledger.ListVisible(ctx, "Bob", 0)
	require.NoError(t, err)
	require.Equal(t, "hello", visible[len(visible)-1].Text)
}

func TestEditMissingOrUnregistered(t *testing.T) {
	ledger, _, _ := testRoom(t, "Alice")
	ctx := context.Background()

	msg, err := ledger.Post(ctx, "Alice", Broadcast, "hi", models.TypeMessage)
	require.NoError(t, err)

	err = ledger.Edit(ctx, "no-such-id", "Alice", Broadcast, "x", models.TypeMessage)
	require.ErrorIs(t, err, ErrNotFound)

	// An unregistered requester is indistinguishable from an absent one
	err = ledger.Edit(ctx, msg.ID, "ghost", Broadcast, "x", models.TypeMessage)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ledger, _, st := testRoom(t, "Alice", "Bob")
	ctx := context.Background()

	msg, err := ledger.Post(ctx, "Alice", Broadcast, "hi", models.TypeMessage)
	require.NoError(t, err)

	err = ledger.Delete(ctx, msg.ID, "Bob")
	require.ErrorIs(t, err, ErrForbidden)

	err = ledger.Delete(ctx, "no-such-id", "Alice")
	require.ErrorIs(t, err, ErrNotFound)

	err = ledger.Delete(ctx, msg.ID, "Alice")
	require.NoError(t, err)

	gone, err := st.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}
