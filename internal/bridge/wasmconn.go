package bridge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// requiredWASMExports lists the functions the native-analyzer WASM module
// must export. Mirrors the ABI-checklist pattern used to host a native
// library in-process without cgo.
var requiredWASMExports = []string{
	"malloc",
	"free",
	"strlen",
	"swiftls_init",
	"swiftls_shutdown",
	"swiftls_send_sync",
	"swiftls_poll_notification",
}

// ErrWASMABIMismatch is returned when a compiled module is missing one of
// requiredWASMExports.
var ErrWASMABIMismatch = errors.New("wasm module is missing a required export")

// ErrWASMChecksumMismatch is returned when the artifact's sha256 does not
// match the expected checksum passed to NewWASMConnection.
var ErrWASMChecksumMismatch = errors.New("wasm artifact checksum mismatch")

var (
	runtimeOnce sync.Once
	runtimeErr  error
	sharedRT    wazero.Runtime
)

// initRuntimeModule builds the single wazero.Runtime shared by every
// WASMConnection in the process, instantiating WASI once.
func initRuntimeModule(ctx context.Context) (wazero.Runtime, error) {
	runtimeOnce.Do(func() {
		sharedRT = wazero.NewRuntime(ctx)
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, sharedRT); err != nil {
			runtimeErr = errors.Wrap(err, "instantiate wasi")
		}
	})
	return sharedRT, runtimeErr
}

// loadWASMArtifactFunc loads the compiled WASM bytes for path. It is a
// package-level variable so tests can override it without touching disk.
var loadWASMArtifactFunc = func(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WASMConnection hosts the native analyzer as a WASM module run in-process
// via wazero, giving "a dynamically loaded library exposing init/shutdown,
// synchronous/async request submission, and a notification sink" (section
// 6) a concrete body without cgo.
type WASMConnection struct {
	tables *Tables

	module   api.Module
	malloc   api.Function
	free     api.Function
	strlen   api.Function
	sendSync api.Function
	pollNote api.Function

	mu      sync.Mutex
	handler NotificationHandler
	closed  bool
}

// NewWASMConnection compiles and instantiates the WASM artifact at path,
// validating it exports every function in requiredWASMExports and that its
// sha256 matches expectedChecksum (empty skips the check, for development
// builds). tables must be the same *Tables instance the Bridge wrapping
// this connection was constructed with.
func NewWASMConnection(ctx context.Context, path, expectedChecksum string, tables *Tables) (*WASMConnection, error) {
	rt, err := initRuntimeModule(ctx)
	if err != nil {
		return nil, err
	}

	artifact, err := loadWASMArtifactFunc(path)
	if err != nil {
		return nil, errors.Wrap(err, "load wasm artifact")
	}

	if expectedChecksum != "" {
		sum := sha256.Sum256(artifact)
		if hex.EncodeToString(sum[:]) != expectedChecksum {
			return nil, ErrWASMChecksumMismatch
		}
	}

	compiled, err := rt.CompileModule(ctx, artifact)
	if err != nil {
		return nil, errors.Wrap(err, "compile wasm module")
	}

	exports := compiled.ExportedFunctions()
	for _, name := range requiredWASMExports {
		if _, ok := exports[name]; !ok {
			return nil, errors.Wrapf(ErrWASMABIMismatch, "missing export %q", name)
		}
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStdout(os.Stdout).WithStderr(os.Stderr))
	if err != nil {
		return nil, errors.Wrap(err, "instantiate wasm module")
	}

	wc := &WASMConnection{
		tables:   tables,
		module:   mod,
		malloc:   mustExportedFunction(mod, "malloc"),
		free:     mustExportedFunction(mod, "free"),
		strlen:   mustExportedFunction(mod, "strlen"),
		sendSync: mustExportedFunction(mod, "swiftls_send_sync"),
		pollNote: mustExportedFunction(mod, "swiftls_poll_notification"),
	}

	init := mustExportedFunction(mod, "swiftls_init")
	results, err := init.Call(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "swiftls_init")
	}
	if len(results) > 0 && results[0] != 0 {
		return nil, fmt.Errorf("swiftls_init returned status %d", results[0])
	}

	return wc, nil
}

func mustExportedFunction(mod api.Module, name string) api.Function {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		panic(fmt.Sprintf("wasm module missing export %q after ABI validation", name))
	}
	return fn
}

// SendSync serializes req to JSON, copies it into the module's linear
// memory, invokes swiftls_send_sync, and decodes the response back out.
func (wc *WASMConnection) SendSync(ctx context.Context, req *Request) (*Response, error) {
	payload, err := wc.encodeRequest(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	reqPtr, err := wc.writeBytes(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer wc.freePtr(ctx, reqPtr)

	packed, err := wc.sendSync.Call(ctx, uint64(reqPtr), uint64(len(payload)))
	if err != nil {
		return nil, errors.Wrap(err, "swiftls_send_sync")
	}
	respPtr, respLen := unpackPtrLen(packed[0])
	defer wc.freePtr(ctx, respPtr)

	respBytes, ok := wc.module.Memory().Read(respPtr, respLen)
	if !ok {
		return nil, errors.New("read response memory out of range")
	}

	return wc.decodeResponse(respBytes)
}

// Send runs SendSync in a goroutine and delivers the result to onDone. The
// native analyzer's own async submission path is opaque from Go's side of
// the WASM boundary, so asynchrony here is provided by the host rather than
// the guest module; cancellation is therefore best-effort (section 5):
// cancel only suppresses the onDone callback, it does not interrupt the
// in-flight call.
func (wc *WASMConnection) Send(ctx context.Context, req *Request, onDone func(*Response, error)) CancelFunc {
	cancelled := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(cancelled) })
	}

	go func() {
		resp, err := wc.SendSync(ctx, req)
		select {
		case <-cancelled:
			return
		default:
			onDone(resp, err)
		}
	}()

	return cancel
}

// SetNotificationHandler installs the single notification sink. The bridge
// calls this exactly once, at construction.
func (wc *WASMConnection) SetNotificationHandler(handler NotificationHandler) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.handler = handler
}

// PollNotification asks the module whether a notification is pending and,
// if so, decodes and delivers it to the installed handler. A production
// host would run this on a dedicated goroutine fed by the module's own
// signaling mechanism; it is exposed as a method so that mechanism stays
// outside the Connection's own concerns.
func (wc *WASMConnection) PollNotification(ctx context.Context) error {
	packed, err := wc.pollNote.Call(ctx)
	if err != nil {
		return errors.Wrap(err, "swiftls_poll_notification")
	}
	ptr, length := unpackPtrLen(packed[0])
	if length == 0 {
		return nil
	}
	defer wc.freePtr(ctx, ptr)

	raw, ok := wc.module.Memory().Read(ptr, length)
	if !ok {
		return errors.New("read notification memory out of range")
	}
	resp, err := wc.decodeResponse(raw)
	if err != nil {
		return errors.Wrap(err, "decode notification")
	}

	wc.mu.Lock()
	handler := wc.handler
	wc.mu.Unlock()
	if handler != nil {
		handler(resp)
	}
	return nil
}

// Close calls swiftls_shutdown and releases the wazero module.
func (wc *WASMConnection) Close() error {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.closed {
		return nil
	}
	wc.closed = true
	ctx := context.Background()
	if _, err := mustExportedFunction(wc.module, "swiftls_shutdown").Call(ctx); err != nil {
		_ = wc.module.Close(ctx)
		return errors.Wrap(err, "swiftls_shutdown")
	}
	return wc.module.Close(ctx)
}

func (wc *WASMConnection) writeBytes(ctx context.Context, data []byte) (uint32, error) {
	results, err := wc.malloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, errors.Wrap(err, "malloc")
	}
	ptr := uint32(results[0])
	if !wc.module.Memory().Write(ptr, data) {
		return 0, errors.New("write request memory out of range")
	}
	return ptr, nil
}

func (wc *WASMConnection) freePtr(ctx context.Context, ptr uint32) {
	if ptr == 0 {
		return
	}
	_, _ = wc.free.Call(ctx, uint64(ptr))
}

// unpackPtrLen splits a packed (ptr<<32 | length) return value, the
// convention swiftls_send_sync and swiftls_poll_notification use to return
// two values from a single WASM result.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed)
}

// wireRequest (and the anonymous response struct in decodeResponse) give the
// UID-keyed Request/Response dictionaries a concrete JSON shape: UIDs
// serialize as the string they were
// interned from, since that is the only thing guaranteed stable across a
// process boundary to a module built independently of this Go binary.
type wireRequest struct {
	Name   string                 `json:"name"`
	Fields map[string]interface{} `json:"fields"`
}

func (wc *WASMConnection) encodeRequest(req *Request) ([]byte, error) {
	fields := make(map[string]interface{}, len(req.Fields()))
	for k, v := range req.Fields() {
		fields[wc.tables.KeyName(k)] = encodeValue(wc.tables, v)
	}
	wire := wireRequest{
		Name:   wc.tables.RequestNames.Name(req.Name()),
		Fields: fields,
	}
	return json.Marshal(wire)
}

func encodeValue(tables *Tables, v Value) interface{} {
	switch val := v.(type) {
	case UID:
		return tables.ValueName(val)
	case []Value:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = encodeValue(tables, e)
		}
		return out
	default:
		return val
	}
}

func (wc *WASMConnection) decodeResponse(raw []byte) (*Response, error) {
	var wire struct {
		Error  string                 `json:"error"`
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if wire.Error != "" {
		return NewErrorResponse(wire.Error), nil
	}

	fields := make(map[UID]Value, len(wire.Fields))
	for name, v := range wire.Fields {
		key, ok := wc.tables.LookupKey(name)
		if !ok {
			continue
		}
		fields[key] = decodeValue(wc.tables, name, v)
	}
	return NewResponse(fields), nil
}

// decodeValue decodes a JSON value read back from the native analyzer.
// fieldName selects how ambiguous shapes are interpreted: the kind/severity
// fields carry a native token string that must be interned into the value
// table as a UID rather than left as a bare string, since every downstream
// translation table (translate.go) keys off value UIDs.
func decodeValue(tables *Tables, fieldName string, v interface{}) Value {
	switch val := v.(type) {
	case []interface{}:
		out := make([]Value, len(val))
		for i, e := range val {
			out[i] = decodeValue(tables, "", e)
		}
		return out
	case map[string]interface{}:
		out := make(map[UID]Value, len(val))
		for name, e := range val {
			if key, ok := tables.LookupKey(name); ok {
				out[key] = decodeValue(tables, name, e)
			}
		}
		return out
	case string:
		if isValueField(fieldName) {
			return tables.InternValue(val)
		}
		return val
	default:
		return val
	}
}

func isValueField(fieldName string) bool {
	switch fieldName {
	case "key.kind", "key.severity":
		return true
	default:
		return false
	}
}
