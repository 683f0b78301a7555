package bridge

import (
	"context"
	"sync"
)

// FakeConnection is an in-memory Connection double for tests: callers queue
// canned responses keyed by request-name UID and inspect the requests that
// were actually sent. It never touches a process boundary, mirroring the
// test-hook override pattern used elsewhere in the reference stack to avoid
// exercising a real native dependency in unit tests.
type FakeConnection struct {
	mu        sync.Mutex
	responses map[UID][]*Response
	sent      []*Request
	handler   NotificationHandler
	closed    bool
}

// NewFakeConnection constructs an empty double.
func NewFakeConnection() *FakeConnection {
	return &FakeConnection{responses: make(map[UID][]*Response)}
}

// QueueResponse appends resp to the FIFO queue returned for requestName.
func (f *FakeConnection) QueueResponse(requestName UID, resp *Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[requestName] = append(f.responses[requestName], resp)
}

// SentRequests returns every request passed to SendSync/Send so far, in
// order.
func (f *FakeConnection) SentRequests() []*Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Request{}, f.sent...)
}

// Emit delivers resp to the installed notification handler, simulating an
// unsolicited update from the native analyzer.
func (f *FakeConnection) Emit(resp *Response) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(resp)
	}
}

func (f *FakeConnection) SendSync(_ context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, req)
	queue := f.responses[req.Name()]
	if len(queue) == 0 {
		return NewResponse(nil), nil
	}
	resp := queue[0]
	f.responses[req.Name()] = queue[1:]
	return resp, nil
}

func (f *FakeConnection) Send(ctx context.Context, req *Request, onDone func(*Response, error)) CancelFunc {
	resp, err := f.SendSync(ctx, req)
	onDone(resp, err)
	return func() {}
}

func (f *FakeConnection) SetNotificationHandler(handler NotificationHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

func (f *FakeConnection) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
