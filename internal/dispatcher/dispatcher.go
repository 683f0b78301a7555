// Package dispatcher owns the client-facing JSON-RPC transport: it parses
// each message envelope, routes it to a registered handler, tracks
// cancellation, and serializes replies, mirroring the teacher's own
// jsonrpc2-based connection plumbing (see the adapted transport in
// internal/server/transport.go) but adding the method table, cancellation
// registry, and single serialized dispatch queue the teacher's copy never
// implemented on top of it.
package dispatcher

import (
	"context"
	"encoding/json"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"
)

// ReplyFunc delivers a request's single reply. Calling it more than once
// for the same request is safe; only the first call has any effect.
type ReplyFunc func(result interface{}, err error)

// RequestFunc handles one request. It may call reply before returning
// (synchronous handling) or retain reply and call it later from a job
// posted back onto the dispatcher via Dispatcher.Post (asynchronous
// handling, e.g. after a native-bridge round trip completes). It should
// check ctx.Err() at any suspension point and, if cancelled, return without
// calling reply — the dispatcher replies RequestCancelled on its behalf.
type RequestFunc func(ctx context.Context, params json.RawMessage, reply ReplyFunc)

// NotificationFunc handles one notification. Notifications never reply;
// an error is logged and otherwise has no effect on the connection.
type NotificationFunc func(ctx context.Context, params json.RawMessage) error

// Dispatcher is a jsonrpc2.Handler that runs every inbound message, and
// every bridge continuation posted via Post, on a single serialized queue:
// the "logically single-threaded" dispatch model the concurrency design
// requires. Parallelism is confined to what handlers themselves spawn
// (bridge calls, transport I/O) — never to concurrent mutation of shared
// dispatcher or document-manager state.
type Dispatcher struct {
	log commonlog.Logger

	mu            sync.Mutex
	requests      map[string]RequestFunc
	notifications map[string]NotificationFunc

	cancels *CancelRegistry

	jobs chan func()
	done chan struct{}
}

// New constructs a Dispatcher with no registered methods. Call Run to start
// draining its job queue before handing it to a transport as a
// jsonrpc2.Handler.
func New(log commonlog.Logger) *Dispatcher {
	return &Dispatcher{
		log:           log,
		requests:      make(map[string]RequestFunc),
		notifications: make(map[string]NotificationFunc),
		cancels:       NewCancelRegistry(),
		jobs:          make(chan func(), 256),
		done:          make(chan struct{}),
	}
}

// HandleRequest registers fn for method.
func (d *Dispatcher) HandleRequest(method string, fn RequestFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests[method] = fn
}

// HandleNotification registers fn for method.
func (d *Dispatcher) HandleNotification(method string, fn NotificationFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifications[method] = fn
}

// Post schedules fn to run on the serialized queue. Native-bridge
// completion callbacks use this to rejoin the single dispatch thread
// before touching document-manager state or calling a ReplyFunc, rather
// than acting directly from the bridge's own goroutine.
func (d *Dispatcher) Post(fn func()) {
	select {
	case d.jobs <- fn:
	case <-d.done:
	}
}

// Run drains the job queue until ctx is done, executing each job to
// completion before starting the next.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(d.done)
			return
		case job := <-d.jobs:
			job()
		}
	}
}

// Handle implements jsonrpc2.Handler. jsonrpc2 may invoke Handle from
// multiple goroutines for pipelined messages; every message is turned into
// a job and enqueued rather than executed inline, which is what keeps
// dispatch serialized regardless of how the transport calls in.
func (d *Dispatcher) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	switch {
	case req.Method == "$/cancelRequest":
		d.Post(func() { d.handleCancel(req) })
	case req.Notif:
		d.Post(func() { d.handleNotification(ctx, req) })
	default:
		d.Post(func() { d.handleRequest(ctx, conn, req) })
	}
}

func (d *Dispatcher) handleCancel(req *jsonrpc2.Request) {
	if req.Params == nil {
		return
	}
	var params struct {
		ID jsonrpc2.ID `json:"id"`
	}
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		d.log.Warningf("malformed $/cancelRequest: %s", err)
		return
	}
	d.cancels.Cancel(params.ID)
}

func (d *Dispatcher) handleNotification(ctx context.Context, req *jsonrpc2.Request) {
	d.mu.Lock()
	fn, ok := d.notifications[req.Method]
	d.mu.Unlock()
	if !ok {
		d.log.Debugf("no handler registered for notification %s", req.Method)
		return
	}
	if err := fn(ctx, rawParams(req)); err != nil {
		d.log.Warningf("notification %s failed: %s", req.Method, err)
	}
}

func (d *Dispatcher) handleRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	d.mu.Lock()
	fn, ok := d.requests[req.Method]
	d.mu.Unlock()
	if !ok {
		d.sendReply(ctx, conn, req.ID, nil, MethodNotFoundError(req.Method))
		return
	}

	reqCtx, release := d.cancels.Register(ctx, req.ID)

	var once sync.Once
	reply := func(result interface{}, err error) {
		once.Do(func() {
			release()
			if reqCtx.Err() == context.Canceled {
				d.sendReply(ctx, conn, req.ID, nil, ErrRequestCancelled)
				return
			}
			if err != nil {
				d.sendReply(ctx, conn, req.ID, nil, toRPCError(err))
				return
			}
			d.sendReply(ctx, conn, req.ID, result, nil)
		})
	}

	// Once reqCtx is done (cancelled, or released by a reply), a queued
	// reply call sends RequestCancelled if the handler has not replied yet;
	// after a normal reply it is a no-op.
	go func() {
		<-reqCtx.Done()
		d.Post(func() { reply(nil, nil) })
	}()

	fn(reqCtx, rawParams(req), reply)
}

func (d *Dispatcher) sendReply(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, result interface{}, rpcErr *jsonrpc2.Error) {
	var err error
	if rpcErr != nil {
		err = conn.ReplyWithError(ctx, id, rpcErr)
	} else {
		err = conn.Reply(ctx, id, result)
	}
	if err != nil {
		d.log.Errorf("failed to send reply: %s", err)
	}
}

func rawParams(req *jsonrpc2.Request) json.RawMessage {
	if req.Params == nil {
		return nil
	}
	return json.RawMessage(*req.Params)
}

func toRPCError(err error) *jsonrpc2.Error {
	var rpcErr *jsonrpc2.Error
	if pkgerrors.As(err, &rpcErr) {
		return rpcErr
	}
	return InternalError(err.Error())
}
