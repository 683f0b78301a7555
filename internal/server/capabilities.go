package server

import (
	"context"
	"encoding/json"
	"os"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

// clientCapabilities records the subset of a client's advertised
// capabilities that feature handlers need to consult after initialize.
type clientCapabilities struct {
	completionSnippetSupport bool
	hoverMarkdownSupport     bool
	codeActionLiteralSupport bool
	codeActionKindValueSet   map[core.CodeActionKind]bool
	foldingLineFoldingOnly   bool
	foldingRangeLimit        int
}

func deriveClientCapabilities(caps protocol.ClientCapabilities) clientCapabilities {
	out := clientCapabilities{}

	if td := caps.TextDocument; td != nil {
		if c := td.Completion; c != nil && c.CompletionItem != nil && c.CompletionItem.SnippetSupport != nil {
			out.completionSnippetSupport = *c.CompletionItem.SnippetSupport
		}
		if h := td.Hover; h != nil {
			for _, format := range h.ContentFormat {
				if format == protocol.MarkupKindMarkdown {
					out.hoverMarkdownSupport = true
					break
				}
			}
		}
		if ca := td.CodeAction; ca != nil && ca.CodeActionLiteralSupport != nil {
			out.codeActionLiteralSupport = true
			out.codeActionKindValueSet = make(map[core.CodeActionKind]bool)
			for _, kind := range ca.CodeActionLiteralSupport.CodeActionKind.ValueSet {
				out.codeActionKindValueSet[core.CodeActionKind(kind)] = true
			}
		}
		if fr := td.FoldingRange; fr != nil {
			if fr.LineFoldingOnly != nil {
				out.foldingLineFoldingOnly = *fr.LineFoldingOnly
			}
			if fr.RangeLimit != nil {
				out.foldingRangeLimit = int(*fr.RangeLimit)
			}
		}
	}
	return out
}

func (s *Server) handleInitialize(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	var params protocol.InitializeParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		reply(nil, dispatcher.InvalidParamsError(err))
		return
	}

	s.mu.Lock()
	s.clientCaps = deriveClientCapabilities(params.Capabilities)
	s.mu.Unlock()

	changeKind := protocol.TextDocumentSyncKindIncremental
	saveOptions := protocol.SaveOptions{IncludeText: boolPtr(false)}
	completionTrigger := []string{"."}
	emptyCodeActionKinds := []protocol.CodeActionKind{}

	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose:         boolPtr(true),
			Change:            &changeKind,
			WillSave:          boolPtr(true),
			WillSaveWaitUntil: boolPtr(false),
			Save:              &saveOptions,
		},
		CompletionProvider: &protocol.CompletionOptions{
			ResolveProvider:   boolPtr(false),
			TriggerCharacters: completionTrigger,
		},
		HoverProvider:             boolPtr(true),
		DocumentHighlightProvider: boolPtr(true),
		FoldingRangeProvider:      boolPtr(true),
		DocumentSymbolProvider:    boolPtr(true),
		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: emptyCodeActionKinds,
		},
		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{},
	}

	version := serverVersion
	reply(protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil)
}

func (s *Server) handleInitialized(ctx context.Context, rawParams json.RawMessage) error {
	s.Log.Infof("client initialized")
	return nil
}

func (s *Server) handleShutdown(ctx context.Context, rawParams json.RawMessage, reply dispatcher.ReplyFunc) {
	s.mu.Lock()
	urls := make([]string, 0, len(s.openURLs))
	for url := range s.openURLs {
		urls = append(urls, url)
	}
	s.shutdownCalled = true
	s.mu.Unlock()

	for _, url := range urls {
		if err := s.bridge.CloseDocument(ctx, url); err != nil {
			s.Log.Warningf("shutdown: closing %s: %s", url, err)
		}
	}

	s.mu.Lock()
	s.openURLs = make(map[string]struct{})
	s.mu.Unlock()

	reply(nil, nil)
}

func (s *Server) handleExit(ctx context.Context, rawParams json.RawMessage) error {
	s.mu.Lock()
	clean := s.shutdownCalled
	s.mu.Unlock()

	code := 0
	if !clean {
		code = 1
	}
	s.Log.Infof("exit notification received, shutdown called: %t", clean)
	os.Exit(code)
	return nil
}

func (s *Server) handleSetTrace(ctx context.Context, rawParams json.RawMessage) error {
	var params protocol.SetTraceParams
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return err
	}
	protocol.SetTraceValue(params.Value)
	return nil
}

const (
	serverName    = "swiftls"
	serverVersion = "0.1.0"
)

func boolPtr(b bool) *bool { return &b }
