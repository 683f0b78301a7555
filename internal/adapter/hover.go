package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

// FromCoreHover converts a hover result to its wire shape, always rendering
// the contents as markdown. The client's hover content-format capability is
// not consulted here or by internal/server's hover handler.
func FromCoreHover(lt *core.LineTable, h core.HoverInfo) (protocol.Hover, error) {
	out := protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: h.Contents,
		},
	}
	if h.Range != nil {
		r, err := FromCoreRange(lt, *h.Range)
		if err != nil {
			return protocol.Hover{}, err
		}
		out.Range = &r
	}
	return out, nil
}
