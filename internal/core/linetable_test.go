package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTableRoundTrip(t *testing.T) {
	text := "hello\nwörld 𐐀!\nlast"
	lt := NewLineTable(text)

	for offset := 0; offset <= len(text); offset++ {
		pos, ok := lt.PositionFromByteOffset(offset)
		if !ok {
			continue
		}
		back, ok := lt.ByteOffset(pos.Line, pos.Character)
		require.True(t, ok)
		assert.Equal(t, offset, back)
	}
}

func TestLineTableUTF16SurrogatePair(t *testing.T) {
	// 𐐀 is U+10400, encoded as 4 UTF-8 bytes and a 2-unit UTF-16 surrogate pair.
	text := "a𐐀b"
	lt := NewLineTable(text)

	col, ok := lt.UTF16Column(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, col)

	col, ok = lt.UTF16Column(0, 1) // after 'a', before the astral rune
	require.True(t, ok)
	assert.Equal(t, 1, col)

	col, ok = lt.UTF16Column(0, 5) // after the astral rune (1 + 4 bytes)
	require.True(t, ok)
	assert.Equal(t, 3, col) // 1 ('a') + 2 (surrogate pair)

	_, ok = lt.UTF16Column(0, 3) // mid-rune, inside the 4-byte sequence
	assert.False(t, ok)

	offset, ok := lt.UTF8Offset(0, 2) // the surrogate pair's low half
	assert.False(t, ok)
	_ = offset

	offset, ok = lt.UTF8Offset(0, 3) // past the surrogate pair, before 'b'
	require.True(t, ok)
	assert.Equal(t, 5, offset)
}

func TestLineTableMixedLineEndings(t *testing.T) {
	text := "one\r\ntwo\nthree"
	lt := NewLineTable(text)
	assert.Equal(t, 3, lt.LineCount())

	content, ok := lt.LineContent(0)
	require.True(t, ok)
	assert.Equal(t, "one", content)

	// end-of-line position (column == line length) is valid
	_, ok = lt.ByteOffset(0, 3)
	assert.True(t, ok)

	// past end-of-line is not
	_, ok = lt.ByteOffset(0, 4)
	assert.False(t, ok)
}

func TestLineTableOutOfRange(t *testing.T) {
	lt := NewLineTable("abc")

	_, ok := lt.ByteOffset(5, 0)
	assert.False(t, ok)

	_, ok = lt.PositionFromByteOffset(100)
	assert.False(t, ok)
}
