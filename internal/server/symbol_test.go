package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
)

func TestDocumentSymbolsFromNodesFloatsUpChildrenOfUnmappedKind(t *testing.T) {
	s, tables, _ := newTestServer(t)

	text := "extension Foo {\n  class Bar {}\n}\n"
	lt := core.NewLineTable(text)

	classKind := tables.InternValue("source.lang.swift.decl.class")
	unmappedKind := tables.InternValue("source.lang.swift.decl.mystery")

	child := bridge.SubstructureNode{
		Name:    "Bar",
		Kind:    classKind,
		HasKind: true,
		Offset:  19,
		Length:  11,
	}
	parent := bridge.SubstructureNode{
		Name:     "Foo",
		Kind:     unmappedKind,
		HasKind:  true,
		Offset:   0,
		Length:   len(text),
		Children: []bridge.SubstructureNode{child},
	}

	symbols := s.documentSymbolsFromNodes(lt, []bridge.SubstructureNode{parent})
	require.Len(t, symbols, 1)
	assert.Equal(t, "Bar", symbols[0].Name)
	assert.Equal(t, core.SymbolKindClass, symbols[0].Kind)
}

func TestDocumentSymbolsFromNodesKeepsMappedParent(t *testing.T) {
	s, tables, _ := newTestServer(t)

	text := "class Foo {\n  class Bar {}\n}\n"
	lt := core.NewLineTable(text)

	classKind := tables.InternValue("source.lang.swift.decl.class")

	child := bridge.SubstructureNode{Name: "Bar", Kind: classKind, HasKind: true, Offset: 14, Length: 11}
	parent := bridge.SubstructureNode{
		Name:     "Foo",
		Kind:     classKind,
		HasKind:  true,
		Offset:   0,
		Length:   len(text),
		Children: []bridge.SubstructureNode{child},
	}

	symbols := s.documentSymbolsFromNodes(lt, []bridge.SubstructureNode{parent})
	require.Len(t, symbols, 1)
	assert.Equal(t, "Foo", symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, "Bar", symbols[0].Children[0].Name)
}
