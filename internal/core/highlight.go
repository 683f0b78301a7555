package core

// DocumentHighlightKind classifies how a symbol occurrence is used at a
// highlighted range.
type DocumentHighlightKind int

const (
	DocumentHighlightKindText  DocumentHighlightKind = 1
	DocumentHighlightKindRead  DocumentHighlightKind = 2
	DocumentHighlightKindWrite DocumentHighlightKind = 3
)

// DocumentHighlight is a single occurrence of the symbol under the cursor.
// The native analyzer's relatedidents request does not distinguish reads
// from writes, so every highlight is reported as DocumentHighlightKindRead
// per section 4.5.
type DocumentHighlight struct {
	Range Range
	Kind  DocumentHighlightKind
}
