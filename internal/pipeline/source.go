package pipeline

import "context"

// SourceHandlers are the three external-boundary callbacks a stream source
// invokes: connection established, message received, connection failed.
type SourceHandlers struct {
	OnOpen    func()
	OnMessage func(raw []byte)
	OnError   func(err error)
}

// Source is the inbound stream collaborator. Implementations own framing
// and transport; the pipeline owns everything after OnMessage. Sources do
// not retry: reconnect policy belongs to the caller.
type Source interface {
	// Connect opens the stream and delivers callbacks until the context is
	// canceled or the stream fails. It blocks; callers run it in a goroutine.
	Connect(ctx context.Context, handlers SourceHandlers) error
	Close() error
}
