package dispatcher

import (
	"context"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
)

// CancelRegistry tracks the cancellation function for every in-flight
// request, keyed by its jsonrpc2 request ID (the RequestCancelKey).
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[jsonrpc2.ID]context.CancelFunc
}

// NewCancelRegistry returns an empty registry.
func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[jsonrpc2.ID]context.CancelFunc)}
}

// Register derives a cancellable context for id from parent and records its
// cancel function. The caller must invoke the returned release exactly once,
// after the request has produced its single reply, whether that reply is
// the cancellation error or a normal result.
func (r *CancelRegistry) Register(parent context.Context, id jsonrpc2.ID) (ctx context.Context, release func()) {
	ctx, cancel := context.WithCancel(parent)
	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()
	return ctx, func() {
		r.mu.Lock()
		delete(r.cancels, id)
		r.mu.Unlock()
		cancel()
	}
}

// Cancel fires id's cancellation token if the request is still in flight.
// It reports whether an in-flight request was found; a cancel arriving
// after the request already replied is simply a no-op.
func (r *CancelRegistry) Cancel(id jsonrpc2.ID) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}
