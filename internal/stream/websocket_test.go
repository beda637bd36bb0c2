package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSClient_DeliversMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		conn.Write(ctx, websocket.MessageText, []byte(`{"event":"UnitFinished"}`))
		conn.Write(ctx, websocket.MessageText, []byte(`{"event":"UnitDamaged"}`))
		conn.Close(websocket.StatusNormalClosure, "done")
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client := NewWSClient(url)
	c := &collector{}

	done := make(chan error, 1)
	go func() { done <- client.Connect(context.Background(), c.handlers()) }()

	require.Eventually(t, func() bool {
		_, messages, _ := c.snapshot()
		return len(messages) == 2
	}, 2*time.Second, 10*time.Millisecond)

	opened, messages, _ := c.snapshot()
	assert.True(t, opened)
	assert.Equal(t, `{"event":"UnitFinished"}`, messages[0])
	assert.Equal(t, `{"event":"UnitDamaged"}`, messages[1])

	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not return after Close")
	}
}

func TestWSClient_DialFailure(t *testing.T) {
	client := NewWSClient("ws://127.0.0.1:1")
	c := &collector{}

	err := client.Connect(context.Background(), c.handlers())
	require.Error(t, err)

	_, _, errs := c.snapshot()
	assert.NotEmpty(t, errs)
}
