package server

import (
	"context"
	"encoding/json"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/errgroup"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/command"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

// localizeStringActionString is the native refactor action requested when
// the cursor sits inside a string literal.
const localizeStringActionString = "source.refactoring.kind.localize.string"

// codeActionsRequestPrefix names the synthetic native-analyzer session
// opened for a code-action syntax probe, kept distinct from the editor's
// real open session and from other synthetic sessions for the same URL.
const codeActionsRequestPrefix = "CodeActions:"

// codeActionProvider computes zero or more actions for a request; its kind
// decides whether it runs under a given context.only filter.
type codeActionProvider struct {
	kind core.CodeActionKind
	run  func(ctx context.Context, url string, snap core.DocumentSnapshot, args []string, rng core.Range) ([]core.CodeAction, error)
}

func (s *Server) codeActionProviders() []codeActionProvider {
	return []codeActionProvider{
		{kind: core.CodeActionKindRefactor, run: s.localizeStringCodeActions},
	}
}

func (s *Server) handleCodeAction(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.CodeActionParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	url := string(params.TextDocument.URI)
	snap, args, ok := s.snapshotAndSettings(ctx, url)
	if !ok {
		s.Log.Warningf("codeAction for unopened document %s", url)
		reply([]protocol.CodeAction{}, nil)
		return
	}

	coreRange, err := adapter.ToCoreRange(snap.LineTable, params.Range)
	if err != nil {
		reply([]protocol.CodeAction{}, nil)
		return
	}

	only := make([]core.CodeActionKind, len(params.Context.Only))
	for i, k := range params.Context.Only {
		only[i] = core.CodeActionKind(k)
	}

	caps := s.clientCapsSnapshot()
	providers := s.codeActionProviders()

	g, gctx := errgroup.WithContext(ctx)
	results := make([][]core.CodeAction, len(providers))
	for i, p := range providers {
		if len(only) > 0 && !kindMatchesOnly(p.kind, only) {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			actions, err := p.run(gctx, url, snap, args, coreRange)
			if err != nil {
				return err
			}
			results[i] = actions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		reply(nil, dispatcher.InternalError(err.Error()))
		return
	}

	var actions []core.CodeAction
	for _, r := range results {
		actions = append(actions, r...)
	}

	useLegacyCommands := !caps.codeActionLiteralSupport
	literals, commands := adapter.FromCoreCodeActions(actions, only, caps.codeActionKindValueSet, useLegacyCommands)
	if useLegacyCommands {
		reply(commands, nil)
		return
	}
	reply(literals, nil)
}

// kindMatchesOnly reports whether kind is unspecified or present in the
// context.only filter; an empty filter accepts every kind.
func kindMatchesOnly(kind core.CodeActionKind, only []core.CodeActionKind) bool {
	if kind == core.CodeActionKindEmpty || len(only) == 0 {
		return true
	}
	for _, k := range only {
		if k == kind {
			return true
		}
	}
	return false
}

// localizeStringCodeActions offers the "Localize String" refactor when the
// requested range's start falls inside a string-literal syntax-map entry.
func (s *Server) localizeStringCodeActions(ctx context.Context, url string, snap core.DocumentSnapshot, args []string, rng core.Range) ([]core.CodeAction, error) {
	offset, ok := snap.LineTable.ByteOffset(rng.Start.Line, rng.Start.Character)
	if !ok {
		return nil, nil
	}

	requestName := codeActionsRequestPrefix + url
	resp, err := s.bridge.OpenDocument(ctx, requestName, snap.Document.Text, args, true)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.bridge.CloseDocument(ctx, requestName); err != nil {
			s.Log.Warningf("codeAction %s: closing syntactic session: %s", url, err)
		}
	}()

	if !s.offsetInStringLiteral(resp, offset) {
		return nil, nil
	}

	refactor := command.SemanticRefactorCommand{
		Title:        "Localize String",
		ActionString: localizeStringActionString,
		Line:         rng.Start.Line,
		Column:       rng.Start.Character,
		Length:       0,
		TextDocument: command.TextDocumentIdent{URI: url},
	}
	cmd, err := refactor.AsCommand()
	if err != nil {
		return nil, err
	}

	kind := core.CodeActionKindRefactor
	return []core.CodeAction{{
		Title:   cmd.Title,
		Kind:    &kind,
		Command: &cmd,
	}}, nil
}

// offsetInStringLiteral reports whether offset falls within a string-literal
// syntax-map entry from resp.
func (s *Server) offsetInStringLiteral(resp *bridge.Response, offset int) bool {
	for _, entry := range s.bridge.SyntaxMap(resp) {
		if !s.bridge.IsStringLiteralSyntaxKind(entry.Kind) {
			continue
		}
		if offset >= entry.Offset && offset < entry.Offset+entry.Length {
			return true
		}
	}
	return false
}
