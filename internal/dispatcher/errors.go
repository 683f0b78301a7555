package dispatcher

import (
	"fmt"

	"github.com/sourcegraph/jsonrpc2"
)

// JSON-RPC / LSP error codes used in replies. The standard JSON-RPC codes
// are negative in the -32700..-32600 range; RequestCancelled is the LSP
// extension code.
const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeRequestCancelled = -32800
)

func newError(code int64, message string) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: code, Message: message}
}

// ErrRequestCancelled is the reply sent for a request whose cancellation
// token fired before it produced a result.
var ErrRequestCancelled = newError(CodeRequestCancelled, "request cancelled")

// MethodNotFoundError builds the reply for an unrecognized method name.
func MethodNotFoundError(method string) *jsonrpc2.Error {
	return newError(CodeMethodNotFound, fmt.Sprintf("method not found: %s", method))
}

// InternalError wraps a native-bridge failure or other handler error that
// reached the client as an opaque message, per the error taxonomy's
// "native-bridge failure" policy.
func InternalError(message string) *jsonrpc2.Error {
	return newError(CodeInternalError, message)
}

// InvalidParamsError builds the reply for a params payload that failed to
// decode against its expected shape.
func InvalidParamsError(err error) *jsonrpc2.Error {
	return newError(CodeInvalidParams, err.Error())
}
