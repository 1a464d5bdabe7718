package wsserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

type fakeProcessor struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeProcessor) ProcessUserQuery(_ context.Context, query string) contractx.Response {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return contractx.Response{
		Query:             query,
		Success:           true,
		SynthesizedAnswer: "answer to " + query,
		Confidence:        0.7,
		AgentResults:      map[string]contractx.AgentResult{},
		ExecutionTrace:    []contractx.TraceEntry{},
	}
}

func dial(t *testing.T, proc contractx.QueryProcessor) *websocket.Conn {
	t.Helper()
	srv, err := New(proc, Config{Path: "/ws"})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType, id string, payload any) {
	t.Helper()
	msg := WSMessage{Type: msgType, ID: id, Timestamp: time.Now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestQueryReturnsResponseFrame(t *testing.T) {
	proc := &fakeProcessor{}
	conn := dial(t, proc)

	send(t, conn, MessageTypeQuery, "q-1", QueryPayload{Query: "Explain transformers"})
	msg := receive(t, conn)

	assert.Equal(t, MessageTypeResponse, msg.Type)
	assert.Equal(t, "q-1", msg.ID)

	var resp contractx.Response
	require.NoError(t, json.Unmarshal(msg.Payload, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "answer to Explain transformers", resp.SynthesizedAnswer)
	assert.InDelta(t, 0.7, resp.Confidence, 1e-9)
}

func TestQueriesAnsweredInOrder(t *testing.T) {
	proc := &fakeProcessor{}
	conn := dial(t, proc)

	send(t, conn, MessageTypeQuery, "a", QueryPayload{Query: "first"})
	send(t, conn, MessageTypeQuery, "b", QueryPayload{Query: "second"})

	assert.Equal(t, "a", receive(t, conn).ID)
	assert.Equal(t, "b", receive(t, conn).ID)

	proc.mu.Lock()
	defer proc.mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, proc.queries)
}

func TestPingPong(t *testing.T) {
	conn := dial(t, &fakeProcessor{})

	send(t, conn, MessageTypePing, "p", nil)
	msg := receive(t, conn)
	assert.Equal(t, MessageTypePong, msg.Type)
	assert.Equal(t, "p", msg.ID)
}

func TestErrorFrames(t *testing.T) {
	proc := &fakeProcessor{}
	conn := dial(t, proc)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := receive(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)

	send(t, conn, MessageTypeQuery, "empty", QueryPayload{Query: "  "})
	msg = receive(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "query is required", payload.Message)

	send(t, conn, "subscribe", "x", nil)
	assert.Equal(t, MessageTypeError, receive(t, conn).Type)

	proc.mu.Lock()
	defer proc.mu.Unlock()
	assert.Empty(t, proc.queries)
}

func TestHealthz(t *testing.T) {
	srv, err := New(&fakeProcessor{}, Config{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNewRequiresProcessor(t *testing.T) {
	_, err := New(nil, Config{})
	require.Error(t, err)
}
