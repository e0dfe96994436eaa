package chunk

import (
	"strings"
	"testing"

	"policyrag/internal/domain/policymodel"

	"github.com/stretchr/testify/require"
)

func syntheticText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	return b.String()
}

func reconstruct(chunks []policymodel.Chunk, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}
	out := []rune(chunks[0].Text)
	for _, c := range chunks[1:] {
		runes := []rune(c.Text)
		out = append(out, runes[overlap:]...)
	}
	return string(out)
}

func TestSplitWindowBoundaries(t *testing.T) {
	text := syntheticText(3000)
	pages := []policymodel.PageText{{PageNum: 1, Text: text}}

	chunks := Split("doc-1", pages, 1000, 200)
	require.Len(t, chunks, 4)

	runes := []rune(text)
	wantBounds := [][2]int{{0, 1000}, {800, 1800}, {1600, 2600}, {2400, 3000}}
	for i, c := range chunks {
		require.Equal(t, i, c.Index)
		require.Equal(t, "doc-1", c.DocumentId)
		require.Equal(t, string(runes[wantBounds[i][0]:wantBounds[i][1]]), c.Text)
	}
}

func TestSplitLossless(t *testing.T) {
	text := syntheticText(3000)
	pages := []policymodel.PageText{{PageNum: 1, Text: text}}

	chunks := Split("doc-1", pages, 1000, 200)
	require.Equal(t, text, reconstruct(chunks, 200))
}

func TestSplitDeterministic(t *testing.T) {
	pages := []policymodel.PageText{
		{PageNum: 1, Text: syntheticText(1700)},
		{PageNum: 2, Text: syntheticText(1400)},
	}
	first := Split("doc-1", pages, 1000, 200)
	second := Split("doc-1", pages, 1000, 200)
	require.Equal(t, first, second)
}

func TestSplitShortPage(t *testing.T) {
	pages := []policymodel.PageText{{PageNum: 1, Text: "short policy text"}}
	chunks := Split("doc-1", pages, 1000, 200)
	require.Len(t, chunks, 1)
	require.Equal(t, "short policy text", chunks[0].Text)
	require.Equal(t, 1, chunks[0].PageFirst)
	require.Equal(t, 1, chunks[0].PageLast)
}

func TestSplitPageRanges(t *testing.T) {
	pages := []policymodel.PageText{
		{PageNum: 1, Text: syntheticText(900)},
		{PageNum: 2, Text: syntheticText(900)},
	}
	chunks := Split("doc-1", pages, 1000, 200)
	require.NotEmpty(t, chunks)

	// first window spans the page break, last window sits inside page 2
	require.Equal(t, 1, chunks[0].PageFirst)
	require.Equal(t, 2, chunks[0].PageLast)
	last := chunks[len(chunks)-1]
	require.Equal(t, 2, last.PageFirst)
	require.Equal(t, 2, last.PageLast)

	for _, c := range chunks {
		require.LessOrEqual(t, c.PageFirst, c.PageLast)
	}
}

func TestSplitMultibyteRunes(t *testing.T) {
	text := strings.Repeat("é", 30)
	pages := []policymodel.PageText{{PageNum: 1, Text: text}}
	chunks := Split("doc-1", pages, 10, 2)
	require.Equal(t, text, reconstruct(chunks, 2))
	for _, c := range chunks[:len(chunks)-1] {
		require.Equal(t, 10, len([]rune(c.Text)))
	}
}

func TestSplitEmptyInput(t *testing.T) {
	require.Nil(t, Split("doc-1", nil, 1000, 200))
	require.Nil(t, Split("doc-1", []policymodel.PageText{}, 1000, 200))
	require.Nil(t, Split("doc-1", []policymodel.PageText{{PageNum: 1, Text: "x"}}, 0, 0))
}

func TestSplitOverlapGuard(t *testing.T) {
	pages := []policymodel.PageText{{PageNum: 1, Text: syntheticText(100)}}
	// overlap >= size collapses to size/4 instead of looping forever
	chunks := Split("doc-1", pages, 10, 10)
	require.NotEmpty(t, chunks)
	require.Equal(t, syntheticText(100), reconstruct(chunks, 10/4))
}

func TestRoles(t *testing.T) {
	text := "The CISO and system administrators must review access. Employees report to their manager."
	roles := Roles(text)
	require.Equal(t, []string{"CISO", "employee", "manager", "system administrator"}, roles)
}

func TestRolesLongestWins(t *testing.T) {
	roles := Roles("Only the system administrator may change this.")
	require.Contains(t, roles, "system administrator")
	require.NotContains(t, roles, "administrator")
}

func TestRolesNone(t *testing.T) {
	require.Nil(t, Roles("No mention of anyone in particular."))
}

func TestRolesWordBoundary(t *testing.T) {
	// "hr" inside another word must not count
	require.Nil(t, Roles("three thresholds"))
}
