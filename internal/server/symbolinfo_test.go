package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/adapter"
	"github.com/swiftls-project/swiftls/internal/bridge"
)

func TestHandleSymbolInfoReturnsSingleSymbol(t *testing.T) {
	s, tables, conn := newTestServer(t)

	text := "class MyClass {}\n"
	_, err := s.documents.Open("file:///a.swift", "swift", 1, text)
	require.NoError(t, err)

	classKind := tables.InternValue("source.lang.swift.decl.class")
	conn.QueueResponse(tables.Requests.CursorInfo, bridge.NewResponse(map[bridge.UID]bridge.Value{
		tables.Keys.Name: "MyClass",
		tables.Keys.Kind: classKind,
		tables.Keys.USR:  "s:MyClass",
	}))

	rawParams, err := json.Marshal(SymbolInfoParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.swift"},
		Position:     protocol.Position{Line: 0, Character: 6},
	})
	require.NoError(t, err)

	var got []adapter.SymbolDetails
	var gotErr error
	s.handleSymbolInfo(context.Background(), rawParams, func(result interface{}, err error) {
		if err != nil {
			gotErr = err
			return
		}
		got = result.([]adapter.SymbolDetails)
	})

	require.NoError(t, gotErr)
	require.Len(t, got, 1)
	assert.Equal(t, "MyClass", got[0].Name)
	assert.Equal(t, "s:MyClass", got[0].USR)
	assert.Equal(t, protocol.SymbolKindClass, got[0].Kind)
}

func TestHandleSymbolInfoEmptyWhenNoSymbolAtCursor(t *testing.T) {
	s, tables, conn := newTestServer(t)

	text := "class MyClass {}\n"
	_, err := s.documents.Open("file:///a.swift", "swift", 1, text)
	require.NoError(t, err)

	conn.QueueResponse(tables.Requests.CursorInfo, bridge.NewResponse(map[bridge.UID]bridge.Value{}))

	rawParams, err := json.Marshal(SymbolInfoParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.swift"},
		Position:     protocol.Position{Line: 0, Character: 0},
	})
	require.NoError(t, err)

	var got []adapter.SymbolDetails
	s.handleSymbolInfo(context.Background(), rawParams, func(result interface{}, err error) {
		require.NoError(t, err)
		got = result.([]adapter.SymbolDetails)
	})

	assert.Empty(t, got)
}
