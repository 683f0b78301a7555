package bridge

import "github.com/swiftls-project/swiftls/internal/core"

// ValueTables holds the value-enumeration UIDs interned from the native
// analyzer's vocabulary (declaration kinds, syntax kinds, severities),
// along with the lookup tables built from them. Per section 4.3 the bridge
// interns and caches these UIDs once; Bridge builds one ValueTables at
// construction and reuses it for every response it translates.
type ValueTables struct {
	severity      map[UID]core.DiagnosticSeverity
	commentKind   map[UID]bool
	stringLiteral map[UID]bool
	completion    map[UID]core.CompletionItemKind
	symbol        map[UID]core.SymbolKind
}

// nativeValueNames is the normative native token vocabulary from section
// 4.3, grouped by the table that consumes it.
var (
	severityNames = map[string]core.DiagnosticSeverity{
		"source.diagnostic.severity.error":   core.SeverityError,
		"source.diagnostic.severity.warning": core.SeverityWarning,
	}

	commentSyntaxNames = []string{
		"source.lang.swift.syntaxtype.comment",
		"source.lang.swift.syntaxtype.comment.mark",
		"source.lang.swift.syntaxtype.comment.url",
		"source.lang.swift.syntaxtype.doc.comment",
		"source.lang.swift.syntaxtype.doc.comment.field",
	}

	stringLiteralSyntaxNames = []string{
		"source.lang.swift.syntaxtype.string",
		"source.lang.swift.syntaxtype.string_interpolation_anchor",
	}

	completionKindNames = map[string]core.CompletionItemKind{
		"source.lang.swift.decl.class":                    core.CompletionItemKindClass,
		"source.lang.swift.decl.struct":                    core.CompletionItemKindStruct,
		"source.lang.swift.decl.enum":                      core.CompletionItemKindEnum,
		"source.lang.swift.decl.enumelement":               core.CompletionItemKindEnumMember,
		"source.lang.swift.decl.protocol":                  core.CompletionItemKindInterface,
		"source.lang.swift.decl.associatedtype":             core.CompletionItemKindTypeParameter,
		"source.lang.swift.decl.generic_type_param":         core.CompletionItemKindTypeParameter,
		"source.lang.swift.decl.typealias":                  core.CompletionItemKindTypeParameter,
		"source.lang.swift.decl.function.constructor":        core.CompletionItemKindConstructor,
		"source.lang.swift.decl.function.method.static":      core.CompletionItemKindMethod,
		"source.lang.swift.decl.function.method.class":       core.CompletionItemKindMethod,
		"source.lang.swift.decl.function.method.instance":    core.CompletionItemKindMethod,
		"source.lang.swift.decl.function.operator.prefix":    core.CompletionItemKindOperator,
		"source.lang.swift.decl.function.operator.postfix":   core.CompletionItemKindOperator,
		"source.lang.swift.decl.function.operator.infix":     core.CompletionItemKindOperator,
		"source.lang.swift.decl.function.free":               core.CompletionItemKindFunction,
		"source.lang.swift.decl.var.static":                  core.CompletionItemKindProperty,
		"source.lang.swift.decl.var.class":                   core.CompletionItemKindProperty,
		"source.lang.swift.decl.var.instance":                core.CompletionItemKindProperty,
		"source.lang.swift.decl.var.local":                   core.CompletionItemKindVariable,
		"source.lang.swift.decl.var.global":                  core.CompletionItemKindVariable,
		"source.lang.swift.decl.var.parameter":                core.CompletionItemKindVariable,
		"source.lang.swift.decl.module":                      core.CompletionItemKindModule,
		"source.lang.swift.keyword":                          core.CompletionItemKindKeyword,
	}

	symbolKindNames = map[string]core.SymbolKind{
		"source.lang.swift.decl.class":                    core.SymbolKindClass,
		"source.lang.swift.decl.function.method.instance":  core.SymbolKindMethod,
		"source.lang.swift.decl.function.method.static":    core.SymbolKindMethod,
		"source.lang.swift.decl.function.method.class":     core.SymbolKindMethod,
		"source.lang.swift.decl.var.static":                core.SymbolKindProperty,
		"source.lang.swift.decl.var.class":                 core.SymbolKindProperty,
		"source.lang.swift.decl.var.instance":               core.SymbolKindProperty,
		"source.lang.swift.decl.enum":                      core.SymbolKindEnum,
		"source.lang.swift.decl.enumelement":               core.SymbolKindEnumMember,
		"source.lang.swift.decl.protocol":                  core.SymbolKindInterface,
		"source.lang.swift.decl.function.free":             core.SymbolKindFunction,
		"source.lang.swift.decl.var.global":                core.SymbolKindVariable,
		"source.lang.swift.decl.var.local":                 core.SymbolKindVariable,
		"source.lang.swift.decl.struct":                    core.SymbolKindStruct,
		"source.lang.swift.decl.generic_type_param":        core.SymbolKindTypeParameter,
		"source.lang.swift.decl.extension":                 core.SymbolKindNamespace,
	}
)

// NewValueTables interns every value name above into table and builds the
// UID-keyed lookup maps the translation helpers below consult.
func NewValueTables(table *UIDTable) *ValueTables {
	vt := &ValueTables{
		severity:      make(map[UID]core.DiagnosticSeverity, len(severityNames)),
		commentKind:   make(map[UID]bool, len(commentSyntaxNames)),
		stringLiteral: make(map[UID]bool, len(stringLiteralSyntaxNames)),
		completion:    make(map[UID]core.CompletionItemKind, len(completionKindNames)),
		symbol:        make(map[UID]core.SymbolKind, len(symbolKindNames)),
	}
	for name, sev := range severityNames {
		vt.severity[table.Intern(name)] = sev
	}
	for _, name := range commentSyntaxNames {
		vt.commentKind[table.Intern(name)] = true
	}
	for _, name := range stringLiteralSyntaxNames {
		vt.stringLiteral[table.Intern(name)] = true
	}
	for name, kind := range completionKindNames {
		vt.completion[table.Intern(name)] = kind
	}
	for name, kind := range symbolKindNames {
		vt.symbol[table.Intern(name)] = kind
	}
	return vt
}

// Severity translates a native diag_error/diag_warning UID. Unrecognized
// severities are absent, per the normative table in section 4.3 — never an
// error.
func (vt *ValueTables) Severity(native UID) (core.DiagnosticSeverity, bool) {
	sev, ok := vt.severity[native]
	return sev, ok
}

// IsCommentSyntaxKind reports whether a syntax-map entry's kind UID should
// fold as a comment region.
func (vt *ValueTables) IsCommentSyntaxKind(native UID) bool {
	return vt.commentKind[native]
}

// IsStringLiteralSyntaxKind reports whether a syntax-map entry's kind UID
// covers a string literal, the trigger condition for the "Localize String"
// refactor code action.
func (vt *ValueTables) IsStringLiteralSyntaxKind(native UID) bool {
	return vt.stringLiteral[native]
}

// CompletionKind translates a native declaration/keyword kind UID to the LSP
// completion item kind, defaulting to Value for anything unmapped.
func (vt *ValueTables) CompletionKind(native UID) core.CompletionItemKind {
	if kind, ok := vt.completion[native]; ok {
		return kind
	}
	return core.CompletionItemKindValue
}

// SymbolKind translates a native declaration kind UID to the LSP symbol
// kind. ok is false for kinds with no mapping; section 4.5 requires such
// substructure nodes to be skipped while their children are still walked.
func (vt *ValueTables) SymbolKind(native UID) (core.SymbolKind, bool) {
	kind, ok := vt.symbol[native]
	return kind, ok
}
