package bridge

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/swiftls-project/swiftls/internal/core"
)

// ErrBridgeFailure wraps a failure response from the native analyzer. Per
// the error taxonomy in section 7 this becomes an LSP InternalError carrying
// the bridge's message.
var ErrBridgeFailure = errors.New("native analyzer request failed")

// DocumentUpdate is the translated payload of an unsolicited
// document-updated notification from the native analyzer.
type DocumentUpdate struct {
	URL         string
	Diagnostics []core.Diagnostic
}

// CompletionResult is a single untranslated completion candidate, already
// pulled out of the codecomplete results array; internal/server applies the
// placeholder rewrite described in section 4.5 before building the final
// core.CompletionItem.
type CompletionResult struct {
	Name       string
	Kind       core.CompletionItemKind
	FilterText string
	InsertText string
	Detail     string
}

// CursorInfoResult is the translated response to a cursorinfo request.
type CursorInfoResult struct {
	Name               string
	Kind               core.SymbolKind
	HasKind            bool
	USR                string
	AnnotatedDecl      string
	DocumentationXML   string
}

// SubstructureNode is one entry of a document-symbol or folding-range walk,
// mirroring the native analyzer's substructure dictionary shape.
type SubstructureNode struct {
	Name         string
	Kind         UID
	HasKind      bool
	Offset       int
	Length       int
	NameOffset   int
	NameLength   int
	HasName      bool
	BodyOffset   int
	BodyLength   int
	HasBody      bool
	Children     []SubstructureNode
}

// SyntaxMapEntry is one entry of a syntax map, used for folding-range
// comment coalescing.
type SyntaxMapEntry struct {
	Kind   UID
	Offset int
	Length int
}

// Tables bundles the three independent UID tables section 4.3 calls for
// (request names, response keys, value enumerations) with the well-known
// identifiers interned into them. A Connection implementation that speaks
// JSON on the wire (wasmconn) needs the same Tables instance the Bridge
// uses, so that a UID read back out of a JSON response names the same thing
// the Bridge's builder methods meant when they wrote it.
type Tables struct {
	RequestNames *UIDTable
	KeyNames     *UIDTable
	ValueNames   *UIDTable

	Keys     WellKnownKeys
	Requests WellKnownRequests
	Values   *ValueTables
}

// NewTables constructs a fresh set of tables with every well-known name
// interned. Call once per process and share the result between the Bridge
// and its Connection.
func NewTables() *Tables {
	requestTable := NewUIDTable()
	keyTable := NewUIDTable()
	valueTable := NewUIDTable()
	return &Tables{
		RequestNames: requestTable,
		KeyNames:     keyTable,
		ValueNames:   valueTable,
		Keys:         InternWellKnownKeys(keyTable),
		Requests:     InternWellKnownRequests(requestTable),
		Values:       NewValueTables(valueTable),
	}
}

// KeyName returns the wire name a response/request key UID was interned
// from.
func (t *Tables) KeyName(u UID) string {
	return t.KeyNames.Name(u)
}

// LookupKey returns the key UID interned for a wire field name, if any.
func (t *Tables) LookupKey(name string) (UID, bool) {
	return t.KeyNames.Lookup(name)
}

// ValueName returns the wire token a value-enumeration UID was interned
// from.
func (t *Tables) ValueName(u UID) string {
	return t.ValueNames.Name(u)
}

// InternValue interns a native value token (a declaration kind, syntax kind,
// or severity) into the value table, returning the UID the rest of the
// bridge already has lookup tables keyed against.
func (t *Tables) InternValue(name string) UID {
	return t.ValueNames.Intern(name)
}

// Bridge is the typed façade over a Connection: it owns the UID tables, the
// single notification handler slot, and builder/translator pairs for every
// request class in section 4.3.
type Bridge struct {
	conn Connection

	keys     WellKnownKeys
	requests WellKnownRequests
	values   *ValueTables

	mu          sync.Mutex
	subscribers []func(DocumentUpdate)
}

// New wraps conn with the typed façade, using the well-known request name,
// response key and value-enumeration UIDs already interned into tables.
func New(conn Connection, tables *Tables) *Bridge {
	b := &Bridge{
		conn:     conn,
		keys:     tables.Keys,
		requests: tables.Requests,
		values:   tables.Values,
	}
	conn.SetNotificationHandler(b.handleNotification)
	return b
}

// OnDocumentUpdate registers fn to be called whenever the native analyzer
// reports a document update. The bridge owns exactly one handler slot on
// the Connection (set once in New) and fans out to every subscriber itself.
func (b *Bridge) OnDocumentUpdate(fn func(DocumentUpdate)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

func (b *Bridge) handleNotification(resp *Response) {
	url, _ := resp.String(b.keys.SourceFile)
	diags := b.translateDiagnostics(resp)

	b.mu.Lock()
	subs := append([]func(DocumentUpdate){}, b.subscribers...)
	b.mu.Unlock()

	update := DocumentUpdate{URL: url, Diagnostics: diags}
	for _, fn := range subs {
		fn(update)
	}
}

// Diagnostics extracts and translates the diagnostics array carried by any
// response that has one (editor.open, editor.replacetext), for callers that
// are not going through the notification path.
func (b *Bridge) Diagnostics(resp *Response) []core.Diagnostic {
	return b.translateDiagnostics(resp)
}

func (b *Bridge) translateDiagnostics(resp *Response) []core.Diagnostic {
	raw, ok := resp.Array(b.keys.Diagnostics)
	if !ok {
		return nil
	}
	diags := make([]core.Diagnostic, 0, len(raw))
	for _, v := range raw {
		d, ok := v.(map[UID]Value)
		if !ok {
			continue
		}
		diags = append(diags, b.translateDiagnostic(Dict(d)))
	}
	return diags
}

func (b *Bridge) translateDiagnostic(d Dict) core.Diagnostic {
	diag := core.Diagnostic{}
	if msg, ok := d.String(b.keys.Description); ok {
		diag.Message = msg
	}
	if offset, ok := d.Int(b.keys.Offset); ok {
		length, _ := d.Int(b.keys.Length)
		diag.Range = core.Range{
			Start: core.Position{Character: offset},
			End:   core.Position{Character: offset + length},
		}
	}
	if sevUID, ok := d.UID(b.keys.Severity); ok {
		if sev, ok := b.values.Severity(sevUID); ok {
			diag.Severity = &sev
		}
	}
	return diag
}

// Close releases the underlying connection. Callers must have already
// closed every open document session via CloseDocument.
func (b *Bridge) Close() error {
	return b.conn.Close()
}

// OpenDocument issues editor.open for a newly opened document. syntacticOnly
// requests structural output without full semantic analysis (used by the
// document-symbol and folding-range handlers under a synthetic request
// name, per section 4.5).
func (b *Bridge) OpenDocument(ctx context.Context, requestName, text string, compilerArgs []string, syntacticOnly bool) (*Response, error) {
	req := NewRequest(b.requests.EditorOpen).
		Set(b.keys.Name, requestName).
		Set(b.keys.SourceText, text)
	if len(compilerArgs) > 0 {
		req.Set(b.keys.CompilerArgs, stringsToValues(compilerArgs))
	}
	if syntacticOnly {
		req.Set(b.keys.Kind, "syntactic")
	}
	return b.sendSync(ctx, req)
}

// CloseDocument issues editor.close, releasing the native analyzer's
// per-path session. Callers must invoke this on every exit path out of
// didClose and on server shutdown (section 5, "Scoped acquisition").
func (b *Bridge) CloseDocument(ctx context.Context, requestName string) error {
	req := NewRequest(b.requests.EditorClose).Set(b.keys.Name, requestName)
	_, err := b.sendSync(ctx, req)
	return err
}

// ReplaceText issues editor.replacetext. A zero-length replacement at
// offset 0 with empty text is the canonical mechanism for requesting a
// refreshed diagnostics batch without otherwise mutating the buffer.
func (b *Bridge) ReplaceText(ctx context.Context, requestName string, byteOffset, byteLength int, replacement string) (*Response, error) {
	req := NewRequest(b.requests.EditorReplaceText).
		Set(b.keys.Name, requestName).
		Set(b.keys.Offset, byteOffset).
		Set(b.keys.Length, byteLength).
		Set(b.keys.SourceText, replacement)
	return b.sendSync(ctx, req)
}

// Completion issues codecomplete at byteOffset and translates the results
// array into untranslated candidates; internal/server applies the
// placeholder rewrite and kind/label assembly.
func (b *Bridge) Completion(ctx context.Context, requestName, sourceText string, byteOffset int, compilerArgs []string) ([]CompletionResult, error) {
	req := NewRequest(b.requests.CodeComplete).
		Set(b.keys.SourceFile, requestName).
		Set(b.keys.Offset, byteOffset).
		Set(b.keys.SourceText, sourceText)
	if len(compilerArgs) > 0 {
		req.Set(b.keys.CompilerArgs, stringsToValues(compilerArgs))
	}

	resp, err := b.sendSync(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, ok := resp.Array(b.keys.Results)
	if !ok {
		return nil, nil
	}
	results := make([]CompletionResult, 0, len(raw))
	for _, v := range raw {
		d, ok := v.(map[UID]Value)
		if !ok {
			continue
		}
		results = append(results, b.translateCompletionResult(Dict(d)))
	}
	return results, nil
}

func (b *Bridge) translateCompletionResult(d Dict) CompletionResult {
	res := CompletionResult{}
	if name, ok := d.String(b.keys.Name); ok {
		res.Name = name
	}
	if filterText, ok := d.String(b.keys.FilterText); ok {
		res.FilterText = filterText
	} else {
		res.FilterText = res.Name
	}
	res.InsertText = res.Name
	res.Detail, _ = d.String(b.keys.TypeName)
	if kindUID, ok := d.UID(b.keys.Kind); ok {
		res.Kind = b.values.CompletionKind(kindUID)
	} else {
		res.Kind = core.CompletionItemKindValue
	}
	return res
}

// CursorInfo issues cursorinfo at byteOffset and translates the response.
func (b *Bridge) CursorInfo(ctx context.Context, requestName string, byteOffset int, compilerArgs []string) (CursorInfoResult, error) {
	req := NewRequest(b.requests.CursorInfo).
		Set(b.keys.SourceFile, requestName).
		Set(b.keys.Offset, byteOffset)
	if len(compilerArgs) > 0 {
		req.Set(b.keys.CompilerArgs, stringsToValues(compilerArgs))
	}

	resp, err := b.sendSync(ctx, req)
	if err != nil {
		return CursorInfoResult{}, err
	}

	result := CursorInfoResult{}
	result.Name, _ = resp.String(b.keys.Name)
	result.USR, _ = resp.String(b.keys.USR)
	result.AnnotatedDecl, _ = resp.String(b.keys.AnnotatedDecl)
	result.DocumentationXML, _ = resp.String(b.keys.DocFullAsXML)
	if kindUID, ok := resp.UID(b.keys.Kind); ok {
		if kind, ok := b.values.SymbolKind(kindUID); ok {
			result.Kind = kind
			result.HasKind = true
		}
	}
	return result, nil
}

// RelatedIdents issues relatedidents at byteOffset and returns the
// (offset, length) pairs of every related occurrence.
func (b *Bridge) RelatedIdents(ctx context.Context, requestName string, byteOffset int, compilerArgs []string) ([]core.Range, error) {
	req := NewRequest(b.requests.RelatedIdents).
		Set(b.keys.SourceFile, requestName).
		Set(b.keys.Offset, byteOffset)
	if len(compilerArgs) > 0 {
		req.Set(b.keys.CompilerArgs, stringsToValues(compilerArgs))
	}

	resp, err := b.sendSync(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, ok := resp.Array(b.keys.Results)
	if !ok {
		return nil, nil
	}
	ranges := make([]core.Range, 0, len(raw))
	for _, v := range raw {
		d, ok := v.(map[UID]Value)
		if !ok {
			continue
		}
		entry := Dict(d)
		offset, ok := entry.Int(b.keys.Offset)
		if !ok {
			continue
		}
		length, _ := entry.Int(b.keys.Length)
		ranges = append(ranges, core.Range{
			Start: core.Position{Character: offset},
			End:   core.Position{Character: offset + length},
		})
	}
	return ranges, nil
}

// SemanticRefactor issues the refactor request for actionString at
// byteOffset..byteOffset+byteLength and returns any produced edit ranges.
func (b *Bridge) SemanticRefactor(ctx context.Context, requestName, actionString string, byteOffset, byteLength int, compilerArgs []string) ([]core.Range, error) {
	req := NewRequest(b.requests.SemanticRefactor).
		Set(b.keys.SourceFile, requestName).
		Set(b.keys.Offset, byteOffset).
		Set(b.keys.Length, byteLength).
		Set(b.keys.Name, actionString)
	if len(compilerArgs) > 0 {
		req.Set(b.keys.CompilerArgs, stringsToValues(compilerArgs))
	}

	resp, err := b.sendSync(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, ok := resp.Array(b.keys.Results)
	if !ok {
		return nil, nil
	}
	ranges := make([]core.Range, 0, len(raw))
	for _, v := range raw {
		d, ok := v.(map[UID]Value)
		if !ok {
			continue
		}
		entry := Dict(d)
		offset, ok := entry.Int(b.keys.Offset)
		if !ok {
			continue
		}
		length, _ := entry.Int(b.keys.Length)
		ranges = append(ranges, core.Range{
			Start: core.Position{Character: offset},
			End:   core.Position{Character: offset + length},
		})
	}
	return ranges, nil
}

// Substructure translates the nested substructure array of resp into the
// recursive SubstructureNode shape, used by the document-symbol and
// folding-range walks.
func (b *Bridge) Substructure(resp *Response) []SubstructureNode {
	raw, ok := resp.Array(b.keys.Substructure)
	if !ok {
		return nil
	}
	return b.substructureNodes(raw)
}

func (b *Bridge) substructureNodes(raw []Value) []SubstructureNode {
	nodes := make([]SubstructureNode, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[UID]Value)
		if !ok {
			continue
		}
		d := Dict(m)
		node := SubstructureNode{}
		node.Name, node.HasName = d.String(b.keys.Name)
		node.Kind, node.HasKind = d.UID(b.keys.Kind)
		node.Offset, _ = d.Int(b.keys.Offset)
		node.Length, _ = d.Int(b.keys.Length)
		node.NameOffset, _ = d.Int(b.keys.NameOffset)
		node.NameLength, _ = d.Int(b.keys.NameLength)
		if bodyOffset, ok := d.Int(b.keys.BodyOffset); ok {
			node.BodyOffset = bodyOffset
			node.BodyLength, _ = d.Int(b.keys.BodyLength)
			node.HasBody = true
		}
		if children, ok := d.Array(b.keys.Substructure); ok {
			node.Children = b.substructureNodes(children)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// SyntaxMap translates resp's syntax map array into SyntaxMapEntry values,
// used by the folding-range handler's comment-coalescing pass.
func (b *Bridge) SyntaxMap(resp *Response) []SyntaxMapEntry {
	raw, ok := resp.Array(b.keys.SyntaxMap)
	if !ok {
		return nil
	}
	entries := make([]SyntaxMapEntry, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[UID]Value)
		if !ok {
			continue
		}
		d := Dict(m)
		kind, _ := d.UID(b.keys.Kind)
		offset, _ := d.Int(b.keys.Offset)
		length, _ := d.Int(b.keys.Length)
		entries = append(entries, SyntaxMapEntry{Kind: kind, Offset: offset, Length: length})
	}
	return entries
}

// IsCommentSyntaxKind reports whether a syntax-map entry's kind should fold
// as a comment region.
func (b *Bridge) IsCommentSyntaxKind(kind UID) bool {
	return b.values.IsCommentSyntaxKind(kind)
}

// IsStringLiteralSyntaxKind reports whether a syntax-map entry's kind
// covers a string literal.
func (b *Bridge) IsStringLiteralSyntaxKind(kind UID) bool {
	return b.values.IsStringLiteralSyntaxKind(kind)
}

// SymbolKind translates a substructure node's native declaration kind UID to
// the LSP symbol kind. ok is false for an unmapped kind.
func (b *Bridge) SymbolKind(kind UID) (core.SymbolKind, bool) {
	return b.values.SymbolKind(kind)
}

func (b *Bridge) sendSync(ctx context.Context, req *Request) (*Response, error) {
	resp, err := b.conn.SendSync(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "native analyzer request")
	}
	if resp.IsError() {
		return nil, errors.Wrap(ErrBridgeFailure, resp.Message())
	}
	return resp, nil
}

func stringsToValues(ss []string) []Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = s
	}
	return vs
}
