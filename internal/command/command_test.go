package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftls-project/swiftls/internal/core"
)

func TestSemanticRefactorRoundTrip(t *testing.T) {
	original := SemanticRefactorCommand{
		Title:        "Localize String",
		ActionString: "source.refactoring.kind.localize.string",
		Line:         1,
		Column:       11,
		Length:       0,
		TextDocument: TextDocumentIdent{URI: "file:///a.swift"},
	}

	cmd, err := original.AsCommand()
	require.NoError(t, err)
	assert.Equal(t, "swift.lsp.semantic.refactor.command", cmd.ID)
	assert.True(t, cmd.IsServerCommand())

	decoded, err := DecodeSemanticRefactor(cmd)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeSemanticRefactorWrongIdentifier(t *testing.T) {
	_, err := DecodeSemanticRefactor(core.Command{ID: "swift.lsp.some.other.command"})
	assert.ErrorIs(t, err, ErrNotThisCommand)
}

func TestDecodeSemanticRefactorNoArguments(t *testing.T) {
	_, err := DecodeSemanticRefactor(core.Command{ID: ID(SemanticRefactorSuffix)})
	assert.ErrorIs(t, err, ErrNotThisCommand)
}
