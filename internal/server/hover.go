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

func (s *Server) handleHover(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.HoverParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, args, ok := s.snapshotAndSettings(ctx, url)
	if !ok {
		s.Log.Warningf("hover for unopened document %s", url)
		reply(nil, nil)
		return
	}

	corePos, err := adapter.ToCorePosition(snap.LineTable, params.Position)
	if err != nil {
		s.Log.Warningf("hover %s: %s", url, err)
		reply(nil, nil)
		return
	}
	offset, ok := snap.LineTable.ByteOffset(corePos.Line, corePos.Character)
	if !ok {
		reply(nil, nil)
		return
	}

	info, err := s.bridge.CursorInfo(ctx, url, offset, args)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}
	if info.Name == "" {
		reply(nil, nil)
		return
	}

	hover := core.HoverInfo{Contents: renderHoverMarkdown(info)}
	out, err := adapter.FromCoreHover(snap.LineTable, hover)
	if err != nil {
		reply(nil, nil)
		return
	}
	reply(out, nil)
}

// renderHoverMarkdown builds a markdown document with a top-level H1 of the
// symbol name, followed by the documentation (converted from its XML form,
// falling back to the raw XML on conversion failure) or, absent that, the
// annotated declaration with the same fallback.
func renderHoverMarkdown(info bridge.CursorInfoResult) string {
	md := "# " + info.Name + "\n\n"
	if info.DocumentationXML != "" {
		if body, err := markdownFromDocumentationXML(info.DocumentationXML); err == nil {
			return md + body
		}
		return md + info.DocumentationXML
	}
	if info.AnnotatedDecl != "" {
		if body, err := markdownFromDocumentationXML(info.AnnotatedDecl); err == nil {
			return md + body
		}
		return md + info.AnnotatedDecl
	}
	return md
}
