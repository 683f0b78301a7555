package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"

	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
)

func testLogger(t *testing.T) commonlog.Logger {
	t.Helper()
	return commonlog.NewScopeLogger(commonlog.GetLogger("server-test"), t.Name())
}

func newTestServer(t *testing.T) (*Server, *bridge.Tables, *bridge.FakeConnection) {
	t.Helper()
	tables := bridge.NewTables()
	conn := bridge.NewFakeConnection()
	b := bridge.New(conn, tables)
	dispatch := dispatcher.New(testLogger(t))
	s := New(testLogger(t), b, NoBuildSettings{}, dispatch)
	return s, tables, conn
}

func TestKindMatchesOnly(t *testing.T) {
	refactor := core.CodeActionKindRefactor
	quickfix := core.CodeActionKindQuickFix

	assert.True(t, kindMatchesOnly(refactor, nil))
	assert.True(t, kindMatchesOnly(refactor, []core.CodeActionKind{refactor, quickfix}))
	assert.False(t, kindMatchesOnly(refactor, []core.CodeActionKind{quickfix}))
}

func TestLocalizeStringCodeActionsDetectsStringLiteral(t *testing.T) {
	s, tables, conn := newTestServer(t)

	text := `let greeting = "hello"` + "\n"
	snap, err := s.documents.Open("file:///a.swift", "swift", 1, text)
	require.NoError(t, err)

	stringKind := tables.InternValue("source.lang.swift.syntaxtype.string")
	conn.QueueResponse(tables.Requests.EditorOpen, bridge.NewResponse(map[bridge.UID]bridge.Value{
		tables.Keys.SyntaxMap: []bridge.Value{
			map[bridge.UID]bridge.Value{
				tables.Keys.Kind:   stringKind,
				tables.Keys.Offset: 15,
				tables.Keys.Length: 7,
			},
		},
	}))

	rng := core.Range{Start: core.Position{Line: 0, Character: 17}, End: core.Position{Line: 0, Character: 17}}
	actions, err := s.localizeStringCodeActions(context.Background(), "file:///a.swift", snap, nil, rng)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "Localize String", actions[0].Title)
	assert.Equal(t, core.CodeActionKindRefactor, *actions[0].Kind)
	require.NotNil(t, actions[0].Command)
	assert.Equal(t, "swift.lsp.semantic.refactor.command", actions[0].Command.ID)
}

func TestLocalizeStringCodeActionsSkipsOutsideStringLiteral(t *testing.T) {
	s, tables, conn := newTestServer(t)

	text := `let greeting = "hello"` + "\n"
	snap, err := s.documents.Open("file:///a.swift", "swift", 1, text)
	require.NoError(t, err)

	conn.QueueResponse(tables.Requests.EditorOpen, bridge.NewResponse(map[bridge.UID]bridge.Value{
		tables.Keys.SyntaxMap: []bridge.Value{},
	}))

	rng := core.Range{Start: core.Position{Line: 0, Character: 0}, End: core.Position{Line: 0, Character: 0}}
	actions, err := s.localizeStringCodeActions(context.Background(), "file:///a.swift", snap, nil, rng)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
