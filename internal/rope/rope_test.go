package rope

import (
	"testing"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/require"
)

func TestOffsetToPosition(t *testing.T) {
	r := New("hello\nwörld\n")
	require.Equal(t, lsp.Position{Line: 0, Character: 0}, r.OffsetToPosition(0))
	require.Equal(t, lsp.Position{Line: 1, Character: 0}, r.OffsetToPosition(6))

	// 'ö' is 2 bytes in UTF-8 but 1 UTF-16 code unit, so the 'r' after it
	// must land at character 2, not 3.
	line1 := r.Line(1)
	require.Equal(t, "wörld", line1)
	idx := 6 + len("wö") // byte offset of 'r' within the full text
	pos := r.OffsetToPosition(idx)
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 2, pos.Character)
}

func TestPositionToOffsetRoundTrip(t *testing.T) {
	r := New("line one\nline two\nline three")
	for _, off := range []int{0, 5, 9, 15, len(r.Text())} {
		pos := r.OffsetToPosition(off)
		back := r.PositionToOffset(pos)
		require.Equal(t, off, back)
	}
}

func TestLineCount(t *testing.T) {
	require.Equal(t, 1, New("no newline").LineCount())
	require.Equal(t, 3, New("a\nb\nc").LineCount())
	require.Equal(t, 2, New("a\n").LineCount())
}

func TestStoreReplaceAndGet(t *testing.T) {
	s := NewStore()
	s.Replace("a.md", "# hi")
	r, ok := s.Get("a.md")
	require.True(t, ok)
	require.Equal(t, "# hi", r.Text())

	s.Delete("a.md")
	_, ok = s.Get("a.md")
	require.False(t, ok)
}
