package server

import (
	"context"
	"encoding/json"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

func (s *Server) handleDocumentHighlight(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.DocumentHighlightParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, args, ok := s.snapshotAndSettings(ctx, url)
	if !ok {
		s.Log.Warningf("documentHighlight for unopened document %s", url)
		reply([]protocol.DocumentHighlight{}, nil)
		return
	}

	corePos, err := adapter.ToCorePosition(snap.LineTable, params.Position)
	if err != nil {
		reply([]protocol.DocumentHighlight{}, nil)
		return
	}
	offset, ok := snap.LineTable.ByteOffset(corePos.Line, corePos.Character)
	if !ok {
		reply([]protocol.DocumentHighlight{}, nil)
		return
	}

	pseudoRanges, err := s.bridge.RelatedIdents(ctx, url, offset, args)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}

	highlights := make([]core.DocumentHighlight, 0, len(pseudoRanges))
	for _, pr := range pseudoRanges {
		r, ok := snap.LineTable.RangeFromByteOffsets(pr.Start.Character, pr.End.Character)
		if !ok {
			continue
		}
		highlights = append(highlights, core.DocumentHighlight{Range: r, Kind: core.DocumentHighlightKindRead})
	}
	reply(adapter.FromCoreDocumentHighlights(snap.LineTable, highlights), nil)
}
