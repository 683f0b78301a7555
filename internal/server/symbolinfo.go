package server

import (
	"context"
	"encoding/json"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

// SymbolInfoParams mirrors the standard text-document-position request
// shape used by textDocument/hover, for the "symbol info" extension method.
type SymbolInfoParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position               `json:"position"`
}

// handleSymbolInfo returns the single symbol at the cursor (name, kind,
// usr), or an empty list if there is no symbol there.
func (s *Server) handleSymbolInfo(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params SymbolInfoParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, args, ok := s.snapshotAndSettings(ctx, url)
	if !ok {
		s.Log.Warningf("symbolInfo for unopened document %s", url)
		reply([]adapter.SymbolDetails{}, nil)
		return
	}

	corePos, err := adapter.ToCorePosition(snap.LineTable, params.Position)
	if err != nil {
		reply([]adapter.SymbolDetails{}, nil)
		return
	}
	offset, ok := snap.LineTable.ByteOffset(corePos.Line, corePos.Character)
	if !ok {
		reply([]adapter.SymbolDetails{}, nil)
		return
	}

	info, err := s.bridge.CursorInfo(ctx, url, offset, args)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}
	if info.Name == "" {
		reply([]adapter.SymbolDetails{}, nil)
		return
	}

	sym := core.CursorSymbol{Name: info.Name, USR: info.USR}
	if info.HasKind {
		sym.Kind = info.Kind
	}
	reply([]adapter.SymbolDetails{adapter.FromCoreCursorSymbol(sym)}, nil)
}
