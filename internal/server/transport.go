package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"
	"github.com/tliron/commonlog"

	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

// DefaultTimeout bounds how long a websocket upgrade handshake may take; it
// does not bound the lifetime of an accepted connection. Stream connections
// have no handshake and no timeout.
var DefaultTimeout = time.Minute

// Transport accepts client connections over stdio or a websocket listener
// and wires each accepted connection to a Dispatcher.
type Transport struct {
	Log     commonlog.Logger
	Debug   bool
	server  *Server
	dispatch *dispatcher.Dispatcher
}

// NewTransport builds a Transport over srv's dispatcher.
func NewTransport(log commonlog.Logger, debug bool, srv *Server, dispatch *dispatcher.Dispatcher) *Transport {
	return &Transport{Log: log, Debug: debug, server: srv, dispatch: dispatch}
}

// ServeStream accepts a single connection over stream (typically stdin/stdout
// wired together) and blocks until it closes.
func (t *Transport) ServeStream(stream io.ReadWriteCloser) {
	conn := t.newConnection(jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}))
	<-conn.DisconnectNotify()
}

// ServeWebSocket upgrades an HTTP request to a websocket and serves one LSP
// connection over it, blocking until it closes.
func (t *Transport) ServeWebSocket(w http.ResponseWriter, r *http.Request) error {
	upgrader := websocket.Upgrader{
		HandshakeTimeout: DefaultTimeout,
		CheckOrigin:      func(*http.Request) bool { return true },
	}
	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	conn := t.newConnection(wsjsonrpc2.NewObjectStream(socket))
	<-conn.DisconnectNotify()
	return nil
}

func (t *Transport) newConnection(stream jsonrpc2.ObjectStream) *jsonrpc2.Conn {
	// LSP connections persist for the editor session, not a fixed deadline.
	ctx := context.Background()
	conn := jsonrpc2.NewConn(ctx, stream, t.dispatch, t.connectionOptions()...)
	t.server.SetConnection(conn)
	return conn
}

func (t *Transport) connectionOptions() []jsonrpc2.ConnOpt {
	if !t.Debug {
		return nil
	}
	log := commonlog.NewScopeLogger(t.Log, "rpc")
	return []jsonrpc2.ConnOpt{jsonrpc2.LogMessages(&rpcLogger{log})}
}

// rpcLogger adapts commonlog.Logger to the Printf-style logger jsonrpc2's
// LogMessages option expects.
type rpcLogger struct {
	log commonlog.Logger
}

func (l *rpcLogger) Printf(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}
