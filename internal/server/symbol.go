package server

import (
	"context"
	"encoding/json"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

// documentSymbolsRequestPrefix names the synthetic native-analyzer session
// opened for a document-symbol walk, kept distinct from the editor's real
// open session for the same URL.
const documentSymbolsRequestPrefix = "DocumentSymbols:"

func (s *Server) handleDocumentSymbol(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, ok := s.documents.LatestSnapshot(url)
	if !ok {
		s.Log.Warningf("documentSymbol for unopened document %s", url)
		reply([]protocol.DocumentSymbol{}, nil)
		return
	}

	args := s.settings.compilerArgs(ctx, url, snap.Document.Language)
	requestName := documentSymbolsRequestPrefix + url

	resp, err := s.bridge.OpenDocument(ctx, requestName, snap.Document.Text, args, true)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}
	defer func() {
		if err := s.bridge.CloseDocument(ctx, requestName); err != nil {
			s.Log.Warningf("documentSymbol %s: closing syntactic session: %s", url, err)
		}
	}()

	nodes := s.bridge.Substructure(resp)
	symbols := s.documentSymbolsFromNodes(snap.LineTable, nodes)
	reply(adapter.FromCoreDocumentSymbols(snap.LineTable, symbols), nil)
}

// documentSymbolsFromNodes converts a substructure walk into DocumentSymbol
// values. A node whose declaration kind has no LSP mapping is skipped, but
// its children are still visited and float up to the skipped node's own
// parent level, per the observed-behavior decision in section 9.
func (s *Server) documentSymbolsFromNodes(lt *core.LineTable, nodes []bridge.SubstructureNode) []core.DocumentSymbol {
	out := make([]core.DocumentSymbol, 0, len(nodes))
	for _, node := range nodes {
		sym, ok := s.documentSymbolFromNode(lt, node)
		if ok {
			out = append(out, sym)
			continue
		}
		out = append(out, s.documentSymbolsFromNodes(lt, node.Children)...)
	}
	return out
}

func (s *Server) documentSymbolFromNode(lt *core.LineTable, node bridge.SubstructureNode) (core.DocumentSymbol, bool) {
	if !node.HasKind {
		return core.DocumentSymbol{}, false
	}
	kind, ok := s.bridge.SymbolKind(node.Kind)
	if !ok {
		return core.DocumentSymbol{}, false
	}

	fullRange, ok := lt.RangeFromByteOffsets(node.Offset, node.Offset+node.Length)
	if !ok {
		return core.DocumentSymbol{}, false
	}
	selection := fullRange
	if node.NameLength > 0 || node.NameOffset > 0 {
		if r, ok := lt.RangeFromByteOffsets(node.NameOffset, node.NameOffset+node.NameLength); ok {
			selection = r
		}
	}

	sym := core.DocumentSymbol{
		Name:           node.Name,
		Kind:           kind,
		Range:          fullRange,
		SelectionRange: selection,
		Children:       s.documentSymbolsFromNodes(lt, node.Children),
	}
	return sym, true
}
