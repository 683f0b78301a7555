package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftls-project/swiftls/internal/core"
)

func TestFromCoreCodeActionsEmptyValueSetFiltersToUnspecifiedKind(t *testing.T) {
	refactor := core.CodeActionKindRefactor
	quickfix := core.CodeActionKindQuickFix
	actions := []core.CodeAction{
		{Title: "Unspecified"},
		{Title: "Refactor", Kind: &refactor},
		{Title: "Quickfix", Kind: &quickfix},
	}

	literals, commands := FromCoreCodeActions(actions, nil, map[core.CodeActionKind]bool{}, false)
	require.Empty(t, commands)
	require.Len(t, literals, 1)
	assert.Equal(t, "Unspecified", literals[0].Title)
}

func TestFromCoreCodeActionsValueSetWithRefactorKeepsMatchingKinds(t *testing.T) {
	refactor := core.CodeActionKindRefactor
	quickfix := core.CodeActionKindQuickFix
	actions := []core.CodeAction{
		{Title: "Unspecified"},
		{Title: "Refactor", Kind: &refactor},
		{Title: "Quickfix", Kind: &quickfix},
	}

	valueSet := map[core.CodeActionKind]bool{core.CodeActionKindRefactor: true}
	literals, commands := FromCoreCodeActions(actions, nil, valueSet, false)
	require.Empty(t, commands)
	require.Len(t, literals, 2)
	assert.Equal(t, "Unspecified", literals[0].Title)
	assert.Equal(t, "Refactor", literals[1].Title)
}

func TestFromCoreCodeActionsLegacyClientIgnoresValueSetAndDropsCommandless(t *testing.T) {
	withCommand := core.Command{Title: "X", ID: "swift.lsp.x"}
	actions := []core.CodeAction{
		{Title: "1"},
		{Title: "2", Command: &withCommand},
	}

	literals, commands := FromCoreCodeActions(actions, nil, nil, true)
	require.Empty(t, literals)
	require.Len(t, commands, 1)
	assert.Equal(t, "X", commands[0].Title)
}
