package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/openroomhq/openroom/internal/chat"
	"github.com/openroomhq/openroom/internal/models"
	"github.com/openroomhq/openroom/internal/store"
)

type testServer struct {
	router   http.Handler
	registry *chat.Registry
	store    *store.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	logger := zerolog.Nop()
	registry := chat.NewRegistry(st, logger)
	ledger := chat.NewLedger(st, logger)
	return &testServer{
		router:   NewRouter(logger, registry, ledger, st, nil),
		registry: registry,
		store:    st,
	}
}

func (ts *testServer) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("User", user)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeMessages(t *testing.T, rec *httptest.ResponseRecorder) []models.Message {
	t.Helper()
	var messages []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	return messages
}

func TestRoomLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	// Register Alice: one participant, one join notice
	rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/participants", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var participants []models.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &participants))
	require.Len(t, participants, 1)
	require.Equal(t, "Alice", participants[0].Name)

	// Duplicate registration is rejected with no new records
	rec = ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Alice posts publicly; Bob can see it
	rec = ts.do(t, http.MethodPost, "/messages", "Alice", map[string]string{
		"to": "Todos", "text": "hi", "type": "message",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var posted models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted))
	require.NotEmpty(t, posted.ID)

	rec = ts.do(t, http.MethodGet, "/messages", "Bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decodeMessages(t, rec)
	require.Equal(t, "hi", messages[len(messages)-1].Text)

	// Bob cannot delete Alice's message
	rec = ts.do(t, http.MethodDelete, "/messages/"+posted.ID, "Bob", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Clock passes the timeout without a heartbeat: Alice is evicted
	evicted, err := ts.registry.EvictStale(ctx, time.Now().Add(11*time.Second), 10*time.Second)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice"}, evicted)

	rec = ts.do(t, http.MethodGet, "/participants", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	// Leave notice appended; Alice's chat message remains
	rec = ts.do(t, http.MethodGet, "/messages", "Bob", nil)
	messages = decodeMessages(t, rec)
	var texts []string
	for _, m := range messages {
		texts = append(texts, m.Text)
	}
	require.Contains(t, texts, "sai da sala...")
	require.Contains(t, texts, "hi")

	// Evicted participants must re-register before heartbeating
	rec = ts.do(t, http.MethodPost, "/status", "Alice", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "   "})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// A name that is nothing but markup sanitizes to empty
	rec = ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "<br/>"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegisterSanitizesName(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": " <b>Alice</b> "})
	require.Equal(t, http.StatusCreated, rec.Code)

	p, err := ts.store.GetParticipant(context.Background(), "Alice")
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestPostValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Unknown sender
	rec = ts.do(t, http.MethodPost, "/messages", "Mallory", map[string]string{
		"to": "Todos", "text": "hi", "type": "message",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Bad type
	rec = ts.do(t, http.MethodPost, "/messages", "Alice", map[string]string{
		"to": "Todos", "text": "hi", "type": "status",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Missing text
	rec = ts.do(t, http.MethodPost, "/messages", "Alice", map[string]string{
		"to": "Todos", "text": "", "type": "message",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListMessagesLimit(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, text := range []string{"one", "two", "three"} {
		rec = ts.do(t, http.MethodPost, "/messages", "Alice", map[string]string{
			"to": "Todos", "text": text, "type": "message",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/messages?limit=2", "Alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decodeMessages(t, rec)
	require.Len(t, messages, 2)
	require.Equal(t, "two", messages[0].Text)
	require.Equal(t, "three", messages[1].Text)

	// Oversized limit returns the whole visible history (join notice included)
	rec = ts.do(t, http.MethodGet, "/messages?limit=100", "Alice", nil)
	messages = decodeMessages(t, rec)
	require.Len(t, messages, 4)

	// Negative and malformed limits are ignored, never applied
	for _, q := range []string{"limit=-1", "limit=0", "limit=abc"} {
		rec = ts.do(t, http.MethodGet, "/messages?"+q, "Alice", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeMessages(t, rec), 4)
	}
}

func TestEditEndpoint(t *testing.T) {
	ts := newTestServer(t)

	for _, name := range []string{"Alice", "Bob"} {
		rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/messages", "Alice", map[string]string{
		"to": "Todos", "text": "hi", "type": "message",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var posted models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted))

	// Non-author edit is rejected
	rec = ts.do(t, http.MethodPut, "/messages/"+posted.ID, "Bob", map[string]string{
		"to": "Todos", "text": "hijacked", "type": "message",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown message id
	rec = ts.do(t, http.MethodPut, "/messages/no-such-id", "Alice", map[string]string{
		"to": "Todos", "text": "x", "type": "message",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Author edit succeeds and shows up in retrieval
	rec = ts.do(t, http.MethodPut, "/messages/"+posted.ID, "Alice", map[string]string{
		"to": "Todos", "text": "hello", "type": "message",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/messages", "Bob", nil)
	messages := decodeMessages(t, rec)
	require.Equal(t, "hello", messages[len(messages)-1].Text)
}

func TestHeartbeatEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/participants", "", map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/status", "Alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/status", "ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp["status"])
}
