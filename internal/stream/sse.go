// Package stream provides concrete inbound stream collaborators for the
// pipeline: a server-sent-events client and a websocket client. Both only
// frame messages; they never parse or retry.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/battlecast/battlecast/internal/pipeline"
)

// SSEClient consumes a text/event-stream endpoint, delivering each event's
// data block as one raw message.
type SSEClient struct {
	url    string
	client *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSSEClient creates a client for the given stream URL. A nil httpClient
// falls back to http.DefaultClient.
func NewSSEClient(url string, httpClient *http.Client) *SSEClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SSEClient{url: url, client: httpClient}
}

// Connect opens the stream and blocks, delivering callbacks until the
// context is canceled, Close is called, or the stream fails.
func (c *SSEClient) Connect(ctx context.Context, handlers pipeline.SourceHandlers) error {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		if handlers.OnError != nil {
			handlers.OnError(err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("stream: unexpected status %d", resp.StatusCode)
		if handlers.OnError != nil {
			handlers.OnError(err)
		}
		return err
	}

	if handlers.OnOpen != nil {
		handlers.OnOpen()
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			// Blank line terminates one event.
			if data.Len() > 0 {
				if handlers.OnMessage != nil {
					handlers.OnMessage([]byte(data.String()))
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Comments and other SSE fields (id:, event:, retry:) are ignored.
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		if handlers.OnError != nil {
			handlers.OnError(err)
		}
		return err
	}
	return ctx.Err()
}

// Close stops the stream.
func (c *SSEClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}
