package adapter

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

var foldingRangeKindTable = map[core.FoldingRangeKind]protocol.FoldingRangeKind{
	core.FoldingRangeKindComment: protocol.FoldingRangeKindComment,
	core.FoldingRangeKindRegion:  protocol.FoldingRangeKindRegion,
}

// FromCoreFoldingRange converts a single range. When lineFoldingOnly is
// true, start/end characters are dropped, matching the client capability
// that tells the server to report whole-line folds only.
func FromCoreFoldingRange(fr core.FoldingRange, lineFoldingOnly bool) protocol.FoldingRange {
	out := protocol.FoldingRange{
		StartLine: protocol.UInteger(fr.StartLine),
		EndLine:   protocol.UInteger(fr.EndLine),
	}
	if !lineFoldingOnly {
		if fr.StartCharacter != nil {
			c := protocol.UInteger(*fr.StartCharacter)
			out.StartCharacter = &c
		}
		if fr.EndCharacter != nil {
			c := protocol.UInteger(*fr.EndCharacter)
			out.EndCharacter = &c
		}
	}
	if fr.Kind != nil {
		if k, ok := foldingRangeKindTable[*fr.Kind]; ok {
			out.Kind = &k
		}
	}
	return out
}

// FromCoreFoldingRanges converts ranges, applying lineFoldingOnly to each
// and truncating to rangeLimit when rangeLimit > 0 (client capability
// foldingRange.rangeLimit). The caller decides ordering before truncation;
// this function only bounds the count.
func FromCoreFoldingRanges(ranges []core.FoldingRange, lineFoldingOnly bool, rangeLimit int) []protocol.FoldingRange {
	if rangeLimit > 0 && len(ranges) > rangeLimit {
		ranges = ranges[:rangeLimit]
	}
	out := make([]protocol.FoldingRange, 0, len(ranges))
	for _, fr := range ranges {
		out = append(out, FromCoreFoldingRange(fr, lineFoldingOnly))
	}
	return out
}
