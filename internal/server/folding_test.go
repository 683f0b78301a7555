package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/core"
)

func TestCommentFoldingRangesCoalescesAdjacentEntries(t *testing.T) {
	text := "// one\n// two\ncode\n"
	lt := core.NewLineTable(text)

	tables := bridge.NewTables()
	conn := bridge.NewFakeConnection()
	b := bridge.New(conn, tables)

	commentKind := tables.InternValue("source.lang.swift.syntaxtype.comment")
	entries := []bridge.SyntaxMapEntry{
		{Kind: commentKind, Offset: 0, Length: 7},
		{Kind: commentKind, Offset: 7, Length: 6},
	}

	ranges := commentFoldingRanges(lt, entries, b)
	require.Len(t, ranges, 1)
	assert.Equal(t, 0, ranges[0].StartLine)
	assert.Equal(t, 1, ranges[0].EndLine)
	assert.Equal(t, core.FoldingRangeKindComment, *ranges[0].Kind)
}

func TestCommentFoldingRangesSkipsNonAdjacentEntries(t *testing.T) {
	text := "// one\ncode\n// two\n"
	lt := core.NewLineTable(text)

	tables := bridge.NewTables()
	conn := bridge.NewFakeConnection()
	b := bridge.New(conn, tables)

	commentKind := tables.InternValue("source.lang.swift.syntaxtype.comment")
	entries := []bridge.SyntaxMapEntry{
		{Kind: commentKind, Offset: 0, Length: 6},
		{Kind: commentKind, Offset: 12, Length: 6},
	}

	ranges := commentFoldingRanges(lt, entries, b)
	require.Len(t, ranges, 2)
}

func TestStructuralFoldingRangesWalksNestedBodies(t *testing.T) {
	text := "class Outer {\n  func inner() {\n    return\n  }\n}\n"
	lt := core.NewLineTable(text)

	outer := bridge.SubstructureNode{
		HasBody:    true,
		BodyOffset: 13,
		BodyLength: len(text) - 13 - 1,
		Children: []bridge.SubstructureNode{
			{
				HasBody:    true,
				BodyOffset: 31,
				BodyLength: 13,
			},
		},
	}

	ranges := structuralFoldingRanges(lt, []bridge.SubstructureNode{outer})
	require.Len(t, ranges, 2)
	for _, r := range ranges {
		assert.Equal(t, core.FoldingRangeKindRegion, *r.Kind)
	}
}

func TestStructuralFoldingRangesSkipsEmptyBody(t *testing.T) {
	text := "struct Empty {}\n"
	lt := core.NewLineTable(text)

	node := bridge.SubstructureNode{HasBody: true, BodyOffset: 14, BodyLength: 0}
	ranges := structuralFoldingRanges(lt, []bridge.SubstructureNode{node})
	assert.Empty(t, ranges)
}

func TestNormalizeToLineFoldingDropsSingleLineRanges(t *testing.T) {
	kind := core.FoldingRangeKindRegion
	ranges := []core.FoldingRange{
		{StartLine: 0, EndLine: 0, Kind: &kind},
		{StartLine: 0, EndLine: 1, Kind: &kind},
		{StartLine: 2, EndLine: 5, Kind: &kind},
	}

	out := normalizeToLineFolding(ranges)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].StartLine)
	assert.Equal(t, 4, out[0].EndLine)
	assert.Nil(t, out[0].StartCharacter)
	assert.Nil(t, out[0].EndCharacter)
}
