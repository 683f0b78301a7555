package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/command"
)

func TestExecuteSemanticRefactorReturnsTranslatedRanges(t *testing.T) {
	s, tables, conn := newTestServer(t)

	text := "let greeting = \"hello\"\n"
	_, err := s.documents.Open("file:///a.swift", "swift", 1, text)
	require.NoError(t, err)

	conn.QueueResponse(tables.Requests.SemanticRefactor, bridge.NewResponse(map[bridge.UID]bridge.Value{
		tables.Keys.Results: []bridge.Value{
			map[bridge.UID]bridge.Value{
				tables.Keys.Offset: 15,
				tables.Keys.Length: 7,
			},
		},
	}))

	refactor := command.SemanticRefactorCommand{
		Title:        "Localize String",
		ActionString: "source.refactoring.kind.localize.string",
		Line:         0,
		Column:       17,
		Length:       0,
		TextDocument: command.TextDocumentIdent{URI: "file:///a.swift"},
	}
	cmd, err := refactor.AsCommand()
	require.NoError(t, err)

	result, err := s.executeSemanticRefactor(cmd.Arguments)
	require.NoError(t, err)

	ranges, ok := result.([]protocol.Range)
	require.True(t, ok)
	require.Len(t, ranges, 1)
	assert.Equal(t, protocol.UInteger(0), ranges[0].Start.Line)
	assert.Equal(t, protocol.UInteger(15), ranges[0].Start.Character)
	assert.Equal(t, protocol.UInteger(22), ranges[0].End.Character)
}

func TestExecuteSemanticRefactorRejectsUnopenedDocument(t *testing.T) {
	s, _, _ := newTestServer(t)

	refactor := command.SemanticRefactorCommand{
		ActionString: "source.refactoring.kind.localize.string",
		TextDocument: command.TextDocumentIdent{URI: "file:///missing.swift"},
	}
	cmd, err := refactor.AsCommand()
	require.NoError(t, err)

	_, err = s.executeSemanticRefactor(cmd.Arguments)
	assert.Error(t, err)
}

func TestExecuteSemanticRefactorRejectsEmptyArguments(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.executeSemanticRefactor(nil)
	assert.Error(t, err)
}
