// Package bridge adapts the core/document types to and from the native
// analyzer, a loaded library exposing a C-style vocabulary of opaque request
// dictionaries and response values. See wasmconn.go for the concrete host
// (a WASM module run in-process via wazero) and fakeconn.go for the
// in-memory double used by tests and by internal/server's own tests.
package bridge

import "sync"

// UID is an opaque, interned identifier shared with the native analyzer.
// UIDs compare only by equality; the string they were interned from is
// recoverable via UIDTable.Name but callers should not rely on interning
// order across table instances.
type UID uint32

// UIDTable lazily interns strings into UIDs and caches the mapping for the
// lifetime of the bridge. The native bridge keeps three independent tables
// per section 4.3: request names, response dictionary keys, and value
// enumerations (kinds, severities). Keeping them separate avoids a
// completion-kind UID ever colliding with a same-named response key.
type UIDTable struct {
	mu     sync.Mutex
	byName map[string]UID
	names  []string
}

// NewUIDTable constructs an empty table.
func NewUIDTable() *UIDTable {
	return &UIDTable{byName: make(map[string]UID)}
}

// Intern returns the UID for name, assigning a new one on first use.
func (t *UIDTable) Intern(name string) UID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if uid, ok := t.byName[name]; ok {
		return uid
	}
	uid := UID(len(t.names))
	t.names = append(t.names, name)
	t.byName[name] = uid
	return uid
}

// Lookup returns the UID already interned for name, if any, without
// creating one.
func (t *UIDTable) Lookup(name string) (UID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	uid, ok := t.byName[name]
	return uid, ok
}

// Name returns the string a UID was interned from.
func (t *UIDTable) Name(u UID) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(u) >= len(t.names) {
		return ""
	}
	return t.names[u]
}

// WellKnownKeys are the response dictionary keys the bridge reads out of
// native-analyzer responses, interned once at construction. Names match the
// field vocabulary listed in section 4.3.
type WellKnownKeys struct {
	Name         UID
	Offset       UID
	Length       UID
	NameOffset   UID
	NameLength   UID
	Kind         UID
	Severity     UID
	Description  UID
	Diagnostics  UID
	Results      UID
	Substructure UID
	SyntaxMap    UID
	SourceText   UID
	BodyOffset   UID
	BodyLength   UID
	TypeName     UID
	FilterText   UID
	CompilerArgs UID
	SourceFile   UID
	USR          UID
	AnnotatedDecl UID
	DocFullAsXML UID
}

// InternWellKnownKeys interns every key section 4.3 names into table and
// returns the typed handle the bridge uses to read responses.
func InternWellKnownKeys(table *UIDTable) WellKnownKeys {
	return WellKnownKeys{
		Name:          table.Intern("key.name"),
		Offset:        table.Intern("key.offset"),
		Length:        table.Intern("key.length"),
		NameOffset:    table.Intern("key.nameoffset"),
		NameLength:    table.Intern("key.namelength"),
		Kind:          table.Intern("key.kind"),
		Severity:      table.Intern("key.severity"),
		Description:   table.Intern("key.description"),
		Diagnostics:   table.Intern("key.diagnostics"),
		Results:       table.Intern("key.results"),
		Substructure:  table.Intern("key.substructure"),
		SyntaxMap:     table.Intern("key.syntaxmap"),
		SourceText:    table.Intern("key.sourcetext"),
		BodyOffset:    table.Intern("key.bodyoffset"),
		BodyLength:    table.Intern("key.bodylength"),
		TypeName:      table.Intern("key.typename"),
		FilterText:    table.Intern("key.filterText"),
		CompilerArgs:  table.Intern("key.compilerargs"),
		SourceFile:    table.Intern("key.sourcefile"),
		USR:           table.Intern("key.usr"),
		AnnotatedDecl: table.Intern("key.annotated_decl"),
		DocFullAsXML:  table.Intern("key.doc.full_as_xml"),
	}
}

// WellKnownRequests are the request-name UIDs listed in the request class
// table in section 4.3.
type WellKnownRequests struct {
	EditorOpen        UID
	EditorClose       UID
	EditorReplaceText UID
	CodeComplete      UID
	CursorInfo        UID
	RelatedIdents     UID
	SemanticRefactor  UID
}

// InternWellKnownRequests interns the request-name vocabulary into table.
// The semantic-refactor request name is not pinned down by the source
// project's public vocabulary the way the others are; "semanticrefactoring"
// follows the same dotted-then-flattened naming the rest of the table uses
// and is recorded here as the one concrete choice for an otherwise-abstract
// "refactor request UID".
func InternWellKnownRequests(table *UIDTable) WellKnownRequests {
	return WellKnownRequests{
		EditorOpen:        table.Intern("source.request.editor.open"),
		EditorClose:       table.Intern("source.request.editor.close"),
		EditorReplaceText: table.Intern("source.request.editor.replacetext"),
		CodeComplete:      table.Intern("source.request.codecomplete"),
		CursorInfo:        table.Intern("source.request.cursorinfo"),
		RelatedIdents:     table.Intern("source.request.relatedidents"),
		SemanticRefactor:  table.Intern("source.request.semanticrefactoring"),
	}
}
