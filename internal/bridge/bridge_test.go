package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftls-project/swiftls/internal/core"
)

func TestBridgeCompletionTranslation(t *testing.T) {
	tables := NewTables()
	conn := NewFakeConnection()
	b := New(conn, tables)

	classKind := tables.InternValue("source.lang.swift.decl.class")
	conn.QueueResponse(tables.Requests.CodeComplete, NewResponse(map[UID]Value{
		tables.Keys.Results: []Value{
			map[UID]Value{
				tables.Keys.Name:     "MyClass",
				tables.Keys.Kind:     classKind,
				tables.Keys.TypeName: "MyClass.Type",
			},
		},
	}))

	results, err := b.Completion(context.Background(), "file:///a.swift", "source", 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MyClass", results[0].Name)
	assert.Equal(t, "MyClass", results[0].FilterText)
	assert.Equal(t, "MyClass.Type", results[0].Detail)
	assert.Equal(t, core.CompletionItemKindClass, results[0].Kind)
}

func TestBridgeCursorInfoUnmappedKind(t *testing.T) {
	tables := NewTables()
	conn := NewFakeConnection()
	b := New(conn, tables)

	unknownKind := tables.InternValue("source.lang.swift.decl.mystery")
	conn.QueueResponse(tables.Requests.CursorInfo, NewResponse(map[UID]Value{
		tables.Keys.Name: "mystery",
		tables.Keys.Kind: unknownKind,
	}))

	result, err := b.CursorInfo(context.Background(), "file:///a.swift", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "mystery", result.Name)
	assert.False(t, result.HasKind)
}

func TestBridgeFailureResponseWrapsError(t *testing.T) {
	tables := NewTables()
	conn := NewFakeConnection()
	b := New(conn, tables)

	conn.QueueResponse(tables.Requests.EditorOpen, NewErrorResponse("compiler crashed"))

	_, err := b.OpenDocument(context.Background(), "file:///a.swift", "text", nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBridgeFailure)
}

func TestBridgeNotificationFanout(t *testing.T) {
	tables := NewTables()
	conn := NewFakeConnection()
	b := New(conn, tables)

	var got []DocumentUpdate
	b.OnDocumentUpdate(func(u DocumentUpdate) { got = append(got, u) })

	errSev := tables.InternValue("source.diagnostic.severity.error")
	conn.Emit(NewResponse(map[UID]Value{
		tables.Keys.SourceFile: "file:///a.swift",
		tables.Keys.Diagnostics: []Value{
			map[UID]Value{
				tables.Keys.Description: "unexpected token",
				tables.Keys.Offset:      5,
				tables.Keys.Length:      3,
				tables.Keys.Severity:    errSev,
			},
		},
	}))

	require.Len(t, got, 1)
	assert.Equal(t, "file:///a.swift", got[0].URL)
	require.Len(t, got[0].Diagnostics, 1)
	assert.Equal(t, "unexpected token", got[0].Diagnostics[0].Message)
}
