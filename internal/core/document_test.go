package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentManagerOpenClose(t *testing.T) {
	dm := NewDocumentManager()

	snap, err := dm.Open("file:///a.swift", "swift", 1, "func f() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Version)

	_, err = dm.Open("file:///a.swift", "swift", 1, "func f() {}")
	assert.ErrorIs(t, err, ErrDocumentAlreadyOpen)

	dm.Close("file:///a.swift")
	_, ok := dm.LatestSnapshot("file:///a.swift")
	assert.False(t, ok)

	// closing an unknown URL is a silent no-op
	dm.Close("file:///nope.swift")
}

func TestDocumentManagerEditAppliesInOrder(t *testing.T) {
	dm := NewDocumentManager()
	_, err := dm.Open("file:///a.swift", "swift", 1, "abc")
	require.NoError(t, err)

	var seenBefore []string
	changes := []Change{
		{Range: &Range{Start: Position{0, 1}, End: Position{0, 2}}, Text: "X"}, // abc -> aXc
		{Range: &Range{Start: Position{0, 0}, End: Position{0, 1}}, Text: "Y"}, // aXc -> YXc
	}

	final, err := dm.Edit("file:///a.swift", 2, changes, func(before DocumentSnapshot, change Change) {
		seenBefore = append(seenBefore, before.Document.Text)
	})
	require.NoError(t, err)
	assert.Equal(t, "YXc", final.Document.Text)
	assert.Equal(t, 2, final.Version)
	assert.Equal(t, []string{"abc", "aXc"}, seenBefore)
}

func TestDocumentManagerEditUnknownURL(t *testing.T) {
	dm := NewDocumentManager()
	_, err := dm.Edit("file:///missing.swift", 1, nil, nil)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentManagerEditInvalidRangeAborts(t *testing.T) {
	dm := NewDocumentManager()
	_, err := dm.Open("file:///a.swift", "swift", 1, "abc")
	require.NoError(t, err)

	changes := []Change{
		{Range: &Range{Start: Position{5, 0}, End: Position{5, 1}}, Text: "X"},
	}
	_, err = dm.Edit("file:///a.swift", 2, changes, nil)
	assert.ErrorIs(t, err, ErrInvalidEditRange)

	// the document is left at its last good state, not partially mutated
	snap, ok := dm.LatestSnapshot("file:///a.swift")
	require.True(t, ok)
	assert.Equal(t, "abc", snap.Document.Text)
	assert.Equal(t, 1, snap.Version)
}

func TestDocumentManagerFullReplacement(t *testing.T) {
	dm := NewDocumentManager()
	_, err := dm.Open("file:///a.swift", "swift", 1, "old")
	require.NoError(t, err)

	final, err := dm.Edit("file:///a.swift", 2, []Change{{Text: "new content"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "new content", final.Document.Text)
}
