package server

import (
	"context"
	"encoding/json"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
)

// resolveDiagnosticRanges resolves every diagnostic's pseudo-range (absolute
// byte offsets packed into Range.Start/End.Character by internal/bridge)
// into a true line/column range against lt, dropping any that no longer
// resolve instead of clamping.
func resolveDiagnosticRanges(lt *core.LineTable, diags []core.Diagnostic) []core.Diagnostic {
	out := make([]core.Diagnostic, 0, len(diags))
	for _, d := range diags {
		r, ok := lt.RangeFromByteOffsets(d.Range.Start.Character, d.Range.End.Character)
		if !ok {
			continue
		}
		d.Range = r
		out = append(out, d)
	}
	return out
}

// publishDiagnostics always sends an array, even when empty, so a prior
// diagnostics batch for url is cleared rather than left stale.
func (s *Server) publishDiagnostics(ctx context.Context, url string, lt *core.LineTable, diags []core.Diagnostic) {
	resolved := resolveDiagnosticRanges(lt, diags)
	wire := adapter.FromCoreDiagnostics(lt, resolved)
	if wire == nil {
		wire = []protocol.Diagnostic{}
	}
	s.notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(url),
		Diagnostics: wire,
	})
}

// handleBridgeDocumentUpdate is registered with the bridge at construction
// and fires for every unsolicited document-updated notification from the
// native analyzer. It rejoins the serialized dispatch queue before touching
// document-manager state, per the single-logical-thread concurrency model.
func (s *Server) handleBridgeDocumentUpdate(update bridge.DocumentUpdate) {
	s.dispatch.Post(func() {
		snap, ok := s.documents.LatestSnapshot(update.URL)
		if !ok {
			return
		}
		s.publishDiagnostics(context.Background(), update.URL, snap.LineTable, update.Diagnostics)
	})
}

func (s *Server) markOpen(url string) {
	s.mu.Lock()
	s.openURLs[url] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) markClosed(url string) {
	s.mu.Lock()
	delete(s.openURLs, url)
	s.mu.Unlock()
}

func (s *Server) handleDidOpen(ctx context.Context, rawParams json.RawMessage) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return err
	}
	td := params.TextDocument
	url := string(td.URI)

	snap, err := s.documents.Open(url, td.LanguageID, int(td.Version), td.Text)
	if err != nil {
		s.Log.Warningf("didOpen %s: %s", url, err)
		return nil
	}
	s.markOpen(url)

	args := s.settings.compilerArgs(ctx, url, td.LanguageID)
	resp, err := s.bridge.OpenDocument(ctx, url, td.Text, args, false)
	if err != nil {
		s.Log.Warningf("didOpen %s: native open failed: %s", url, err)
		s.publishDiagnostics(ctx, url, snap.LineTable, nil)
		return nil
	}
	s.publishDiagnostics(ctx, url, snap.LineTable, s.bridge.Diagnostics(resp))
	return nil
}

func (s *Server) handleDidChange(ctx context.Context, rawParams json.RawMessage) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return err
	}
	url := string(params.TextDocument.URI)

	current, ok := s.documents.LatestSnapshot(url)
	if !ok {
		s.Log.Warningf("didChange for unopened document %s", url)
		return nil
	}

	changes, err := buildCoreChanges(current, params.ContentChanges)
	if err != nil {
		s.Log.Warningf("didChange %s: %s", url, err)
		return nil
	}

	args := s.settings.compilerArgs(ctx, url, current.Document.Language)
	var lastDiags []core.Diagnostic
	var sawDiags bool

	final, err := s.documents.Edit(url, int(params.TextDocument.Version), changes, func(before core.DocumentSnapshot, change core.Change) {
		diags, nativeErr := s.mirrorNativeChange(ctx, url, before, change, args)
		if nativeErr != nil {
			s.Log.Warningf("didChange %s: native replace failed: %s", url, nativeErr)
			return
		}
		lastDiags = diags
		sawDiags = true
	})
	if err != nil {
		s.Log.Errorf("didChange %s: %s", url, err)
		return nil
	}

	if !sawDiags {
		lastDiags = nil
	}
	s.publishDiagnostics(ctx, url, final.LineTable, lastDiags)
	return nil
}

// mirrorNativeChange replays one document-manager change against the native
// analyzer session for url, using before's own line table to resolve byte
// offsets (still valid for change, since before is the exact pre-edit
// snapshot this change applies to).
func (s *Server) mirrorNativeChange(ctx context.Context, url string, before core.DocumentSnapshot, change core.Change, args []string) ([]core.Diagnostic, error) {
	if change.Range == nil {
		text := before.Document.Text
		r, err := s.bridge.ReplaceText(ctx, url, 0, len(text), change.Text)
		if err != nil {
			return nil, err
		}
		return s.bridge.Diagnostics(r), nil
	}

	startOffset, ok := before.LineTable.ByteOffset(change.Range.Start.Line, change.Range.Start.Character)
	if !ok {
		return nil, core.ErrInvalidEditRange
	}
	endOffset, ok := before.LineTable.ByteOffset(change.Range.End.Line, change.Range.End.Character)
	if !ok {
		return nil, core.ErrInvalidEditRange
	}
	r, err := s.bridge.ReplaceText(ctx, url, startOffset, endOffset-startOffset, change.Text)
	if err != nil {
		return nil, err
	}
	return s.bridge.Diagnostics(r), nil
}

func (s *Server) handleDidClose(ctx context.Context, rawParams json.RawMessage) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return err
	}
	url := string(params.TextDocument.URI)

	s.documents.Close(url)
	s.markClosed(url)
	s.settings.invalidate(url)

	if err := s.bridge.CloseDocument(ctx, url); err != nil {
		s.Log.Warningf("didClose %s: %s", url, err)
	}
	return nil
}

func (s *Server) handleWillSave(ctx context.Context, rawParams json.RawMessage) error {
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, rawParams json.RawMessage) error {
	return nil
}

// buildCoreChanges converts the client's polymorphic ContentChanges slice
// into core.Change values, simulating each change's effect on a local copy
// of the text so a ranged change's protocol.Range (UTF-16, relative to the
// document as of the *previous* change in this same batch) is translated
// against the correct line table rather than the snapshot current held
// before the whole batch began.
func buildCoreChanges(current core.DocumentSnapshot, raw []interface{}) ([]core.Change, error) {
	text := current.Document.Text
	lt := current.LineTable

	changes := make([]core.Change, 0, len(raw))
	for _, rc := range raw {
		switch c := rc.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, core.Change{Text: c.Text})
			text = c.Text
			lt = core.NewLineTable(text)

		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				changes = append(changes, core.Change{Text: c.Text})
				text = c.Text
				lt = core.NewLineTable(text)
				continue
			}
			r, err := adapter.ToCoreRange(lt, *c.Range)
			if err != nil {
				return nil, err
			}
			changes = append(changes, core.Change{Range: &r, Text: c.Text})

			start, _ := lt.ByteOffset(r.Start.Line, r.Start.Character)
			end, _ := lt.ByteOffset(r.End.Line, r.End.Character)
			text = text[:start] + c.Text + text[end:]
			lt = core.NewLineTable(text)
		}
	}
	return changes, nil
}
