package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

var highlightKindTable = map[core.DocumentHighlightKind]protocol.DocumentHighlightKind{
	core.DocumentHighlightKindText:  protocol.DocumentHighlightKindText,
	core.DocumentHighlightKindRead:  protocol.DocumentHighlightKindRead,
	core.DocumentHighlightKindWrite: protocol.DocumentHighlightKindWrite,
}

// FromCoreDocumentHighlight converts a single highlight.
func FromCoreDocumentHighlight(lt *core.LineTable, h core.DocumentHighlight) (protocol.DocumentHighlight, error) {
	r, err := FromCoreRange(lt, h.Range)
	if err != nil {
		return protocol.DocumentHighlight{}, err
	}
	kind := protocol.DocumentHighlightKindText
	if k, ok := highlightKindTable[h.Kind]; ok {
		kind = k
	}
	return protocol.DocumentHighlight{Range: r, Kind: &kind}, nil
}

// FromCoreDocumentHighlights converts hs, dropping any whose range no
// longer resolves against lt.
func FromCoreDocumentHighlights(lt *core.LineTable, hs []core.DocumentHighlight) []protocol.DocumentHighlight {
	out := make([]protocol.DocumentHighlight, 0, len(hs))
	for _, h := range hs {
		ph, err := FromCoreDocumentHighlight(lt, h)
		if err != nil {
			continue
		}
		out = append(out, ph)
	}
	return out
}
