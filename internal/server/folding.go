package server

import (
	"context"
	"encoding/json"
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

const foldingRangesRequestPrefix = "FoldingRanges:"

func (s *Server) handleFoldingRange(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.FoldingRangeParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, ok := s.documents.LatestSnapshot(url)
	if !ok {
		s.Log.Warningf("foldingRange for unopened document %s", url)
		reply([]protocol.FoldingRange{}, nil)
		return
	}

	args := s.settings.compilerArgs(ctx, url, snap.Document.Language)
	requestName := foldingRangesRequestPrefix + url

	resp, err := s.bridge.OpenDocument(ctx, requestName, snap.Document.Text, args, true)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}
	defer func() {
		if err := s.bridge.CloseDocument(ctx, requestName); err != nil {
			s.Log.Warningf("foldingRange %s: closing syntactic session: %s", url, err)
		}
	}()

	lt := snap.LineTable
	rangeLimit := s.clientCapsSnapshot().foldingRangeLimit
	lineFoldingOnly := s.clientCapsSnapshot().foldingLineFoldingOnly

	var ranges []core.FoldingRange
	ranges = append(ranges, commentFoldingRanges(lt, s.bridge.SyntaxMap(resp), s.bridge)...)
	ranges = append(ranges, structuralFoldingRanges(lt, s.bridge.Substructure(resp))...)

	if lineFoldingOnly {
		ranges = normalizeToLineFolding(ranges)
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].StartLine != ranges[j].StartLine {
			return ranges[i].StartLine < ranges[j].StartLine
		}
		return ranges[i].EndLine < ranges[j].EndLine
	})

	if rangeLimit > 0 && len(ranges) > rangeLimit {
		ranges = ranges[:rangeLimit]
	}

	reply(adapter.FromCoreFoldingRanges(ranges, lineFoldingOnly, 0), nil)
}

func (s *Server) clientCapsSnapshot() clientCapabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientCaps
}

// commentFoldingRanges coalesces byte-adjacent comment syntax-map entries
// into single comment folding ranges before converting to line/column
// space.
func commentFoldingRanges(lt *core.LineTable, entries []bridge.SyntaxMapEntry, b *bridge.Bridge) []core.FoldingRange {
	var ranges []core.FoldingRange

	i := 0
	for i < len(entries) {
		if !b.IsCommentSyntaxKind(entries[i].Kind) {
			i++
			continue
		}
		start := entries[i].Offset
		end := entries[i].Offset + entries[i].Length
		j := i + 1
		for j < len(entries) && b.IsCommentSyntaxKind(entries[j].Kind) && entries[j].Offset == end {
			end = entries[j].Offset + entries[j].Length
			j++
		}

		if r, ok := lt.RangeFromByteOffsets(start, end); ok {
			kind := core.FoldingRangeKindComment
			ranges = append(ranges, core.FoldingRange{
				StartLine:      r.Start.Line,
				StartCharacter: intPtr(r.Start.Character),
				EndLine:        r.End.Line,
				EndCharacter:   intPtr(r.End.Character),
				Kind:           &kind,
			})
		}
		i = j
	}
	return ranges
}

// structuralFoldingRanges walks the substructure tree with an explicit
// stack, emitting a folding range for every node whose body span is
// non-empty.
func structuralFoldingRanges(lt *core.LineTable, nodes []bridge.SubstructureNode) []core.FoldingRange {
	var ranges []core.FoldingRange

	type frame struct {
		nodes []bridge.SubstructureNode
		idx   int
	}
	stack := []frame{{nodes: nodes}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.idx >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		node := top.nodes[top.idx]
		top.idx++

		if node.HasBody && node.BodyLength > 0 {
			kind := core.FoldingRangeKindRegion
			if r, ok := lt.RangeFromByteOffsets(node.BodyOffset, node.BodyOffset+node.BodyLength); ok {
				ranges = append(ranges, core.FoldingRange{
					StartLine:      r.Start.Line,
					StartCharacter: intPtr(r.Start.Character),
					EndLine:        r.End.Line,
					EndCharacter:   intPtr(r.End.Character),
					Kind:           &kind,
				})
			}
		}
		if len(node.Children) > 0 {
			stack = append(stack, frame{nodes: node.Children})
		}
	}
	return ranges
}

// normalizeToLineFolding reduces every range to whole lines: the end line
// becomes end.line-1, and the range is dropped if that would leave
// end_line <= start_line.
func normalizeToLineFolding(ranges []core.FoldingRange) []core.FoldingRange {
	out := make([]core.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		endLine := r.EndLine - 1
		if endLine <= r.StartLine {
			continue
		}
		r.EndLine = endLine
		r.StartCharacter = nil
		r.EndCharacter = nil
		out = append(out, r)
	}
	return out
}

func intPtr(n int) *int { return &n }
