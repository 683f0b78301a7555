package server

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

func (s *Server) handleCompletion(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.CompletionParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, args, ok := s.snapshotAndSettings(ctx, url)
	if !ok {
		s.Log.Warningf("completion for unopened document %s", url)
		reply(protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil)
		return
	}

	offset, err := identifierRewindOffset(snap, params.Position)
	if err != nil {
		s.Log.Warningf("completion %s: %s", url, err)
		reply(protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil)
		return
	}

	results, err := s.bridge.Completion(ctx, url, snap.Document.Text, offset, args)
	if err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}

	items := make([]core.CompletionItem, 0, len(results))
	for _, r := range results {
		items = append(items, completionItemFromResult(r))
	}
	reply(adapter.FromCoreCompletionList(core.CompletionList{Items: items}), nil)
}

// identifierRewindOffset resolves pos to a byte offset and rewinds it
// backward across identifier characters (letters, digits, underscore) to
// the start of the identifier under the cursor.
func identifierRewindOffset(snap core.DocumentSnapshot, pos protocol.Position) (int, error) {
	corePos, err := adapter.ToCorePosition(snap.LineTable, pos)
	if err != nil {
		return 0, err
	}
	offset, ok := snap.LineTable.ByteOffset(corePos.Line, corePos.Character)
	if !ok {
		return 0, adapter.ErrPositionOutOfRange
	}

	text := snap.Document.Text
	for offset > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:offset])
		if r == utf8.RuneError || !isIdentifierRune(r) {
			break
		}
		offset -= size
	}
	return offset, nil
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func completionItemFromResult(r bridge.CompletionResult) core.CompletionItem {
	kind := r.Kind
	item := core.CompletionItem{
		Label:            r.Name,
		Kind:             &kind,
		FilterText:       r.FilterText,
		Detail:           r.Detail,
		InsertTextFormat: core.InsertTextFormatSnippet,
	}
	item.InsertText = rewritePlaceholders(r.InsertText)
	return item
}

// rewritePlaceholders rewrites `<#...#>` placeholder markers into LSP
// snippet tab stops `${n:value}`, left to right, with n starting at 1 and
// incrementing per placeholder. A malformed placeholder (an opening marker
// with no matching close) aborts the rewrite entirely and returns text
// unchanged, per the completion placeholder contract.
func rewritePlaceholders(text string) string {
	if !strings.Contains(text, "<#") {
		return text
	}

	var out strings.Builder
	n := 1
	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "<#")
		if start < 0 {
			out.WriteString(text[i:])
			return out.String()
		}
		start += i
		end := strings.Index(text[start+2:], "#>")
		if end < 0 {
			// Malformed: no matching close. Abort and return the original.
			return text
		}
		end += start + 2

		out.WriteString(text[i:start])
		value := text[start+2 : end]
		out.WriteString("${")
		out.WriteString(strconv.Itoa(n))
		out.WriteString(":")
		out.WriteString(value)
		out.WriteString("}")
		n++
		i = end + 2
	}
	return out.String()
}

