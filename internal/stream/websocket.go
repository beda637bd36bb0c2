package stream

import (
	"context"
	"sync"

	"github.com/coder/websocket"

	"github.com/battlecast/battlecast/internal/pipeline"
)

// WSClient consumes a websocket endpoint, delivering each text frame as one
// raw message.
type WSClient struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a client for the given websocket URL.
func NewWSClient(url string) *WSClient {
	return &WSClient{url: url}
}

// Connect dials the endpoint and blocks reading frames until the context is
// canceled, Close is called, or the connection fails.
func (c *WSClient) Connect(ctx context.Context, handlers pipeline.SourceHandlers) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		if handlers.OnError != nil {
			handlers.OnError(err)
		}
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	// Telemetry bursts can exceed the library's modest default read limit.
	conn.SetReadLimit(1 << 20)

	if handlers.OnOpen != nil {
		handlers.OnOpen()
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if handlers.OnError != nil {
				handlers.OnError(err)
			}
			return err
		}
		if handlers.OnMessage != nil {
			handlers.OnMessage(data)
		}
	}
}

// Close closes the connection.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "client closing")
	c.conn = nil
	return err
}
