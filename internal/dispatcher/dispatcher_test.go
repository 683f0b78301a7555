package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func testLogger(t *testing.T) commonlog.Logger {
	t.Helper()
	return commonlog.NewScopeLogger(commonlog.GetLogger("dispatcher-test"), t.Name())
}

func TestCancelRegistryFiresAndClears(t *testing.T) {
	r := NewCancelRegistry()
	id := jsonrpc2.ID{Num: 1}

	ctx, release := r.Register(context.Background(), id)
	require.NoError(t, ctx.Err())

	assert.True(t, r.Cancel(id))
	assert.Equal(t, context.Canceled, ctx.Err())

	release()
	assert.False(t, r.Cancel(id))
}

func TestDispatcherPostRunsOnQueue(t *testing.T) {
	d := New(testLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Run(ctx)

	done := make(chan struct{})
	d.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted job never ran")
	}
}

func TestToRPCErrorPassesThroughRPCError(t *testing.T) {
	original := InternalError("boom")
	got := toRPCError(original)
	assert.Same(t, original, got)
}

func TestToRPCErrorWrapsPlainError(t *testing.T) {
	got := toRPCError(assertAnError{})
	assert.Equal(t, int64(CodeInternalError), got.Code)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "plain failure" }

func TestRawParamsNil(t *testing.T) {
	req := &jsonrpc2.Request{}
	assert.Nil(t, rawParams(req))
}

func TestRawParamsPassesThrough(t *testing.T) {
	raw := json.RawMessage(`{"a":1}`)
	req := &jsonrpc2.Request{Params: (*json.RawMessage)(&raw)}
	assert.JSONEq(t, `{"a":1}`, string(rawParams(req)))
}
