package bridge

import "context"

// NotificationHandler receives unsolicited responses from the native
// analyzer (e.g. an updated-diagnostics batch following an editor.open or
// editor.replacetext call). The bridge owns exactly one such handler slot
// per process lifetime and multiplexes subscribers itself; a Connection
// implementation only ever calls the single handler SetNotificationHandler
// last installed.
type NotificationHandler func(*Response)

// CancelFunc best-effort cancels an in-flight asynchronous request. Per
// section 5, the native analyzer's cancel path is best-effort: calling it
// stops the reply from being delivered to the caller's callback but does
// not guarantee the underlying native work is aborted.
type CancelFunc func()

// Connection is the bridge's surface over a loaded native analyzer: a
// synchronous send, an asynchronous send returning a cancel handle, and a
// single notification sink. Implementations: wasmconn (a WASM module hosted
// in-process via wazero) for production, fakeconn for tests.
type Connection interface {
	SendSync(ctx context.Context, req *Request) (*Response, error)
	Send(ctx context.Context, req *Request, onDone func(*Response, error)) CancelFunc
	SetNotificationHandler(handler NotificationHandler)
	Close() error
}
