package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md(rel string) *SourceFile {
	return &SourceFile{AbsPath: "/vault/" + rel, RelPath: rel, Kind: Markdown}
}

func bin(rel string) *SourceFile {
	return &SourceFile{AbsPath: "/vault/" + rel, RelPath: rel, Kind: Binary}
}

func TestLookupByBasenameAndPath(t *testing.T) {
	ix := NewIndex([]*SourceFile{
		md("Target.md"),
		md("sub/Deep Note.md"),
		bin("attachments/pic.png"),
	})

	tests := []struct {
		target string
		want   string
	}{
		{"Target", "Target.md"},
		{"Target.md", "Target.md"},
		{"Deep Note", "sub/Deep Note.md"},
		{"sub/Deep Note", "sub/Deep Note.md"},
		{"Deep Note.md", "sub/Deep Note.md"},
		{"pic.png", "attachments/pic.png"},
		{"attachments/pic.png", "attachments/pic.png"},
		// normalization
		{"  Target ", "Target.md"},
		{"sub\\Deep Note", "sub/Deep Note.md"},
		{"Deep%20Note", "sub/Deep Note.md"},
	}
	for _, tt := range tests {
		res, found := ix.Lookup(tt.target)
		require.True(t, found, "target %q", tt.target)
		assert.Equal(t, tt.want, res.File.RelPath, "target %q", tt.target)
		assert.False(t, res.Ambiguous, "target %q", tt.target)
	}
}

func TestLookupMissing(t *testing.T) {
	ix := NewIndex([]*SourceFile{md("Target.md")})

	_, found := ix.Lookup("Nope")
	assert.False(t, found)

	_, found = ix.Lookup("")
	assert.False(t, found)
}

func TestLookupSameBasenameDifferentDirectories(t *testing.T) {
	ix := NewIndex([]*SourceFile{
		md("a/Note.md"),
		md("b/Note.md"),
	})

	// Full relative paths stay unambiguous.
	res, found := ix.Lookup("a/Note")
	require.True(t, found)
	assert.Equal(t, "a/Note.md", res.File.RelPath)
	assert.False(t, res.Ambiguous)

	res, found = ix.Lookup("b/Note")
	require.True(t, found)
	assert.Equal(t, "b/Note.md", res.File.RelPath)

	// The bare basename is a tie: lexicographic order decides, and the
	// ambiguity is reported.
	res, found = ix.Lookup("Note")
	require.True(t, found)
	assert.Equal(t, "a/Note.md", res.File.RelPath)
	assert.True(t, res.Ambiguous)
	assert.Len(t, res.Candidates, 2)
}

func TestLookupPrefersFewestSegments(t *testing.T) {
	ix := NewIndex([]*SourceFile{
		md("Note.md"),
		md("deep/down/Note.md"),
	})

	res, found := ix.Lookup("Note")
	require.True(t, found)
	assert.Equal(t, "Note.md", res.File.RelPath)
	assert.False(t, res.Ambiguous)
}

func TestLookupSuffixMatch(t *testing.T) {
	ix := NewIndex([]*SourceFile{
		md("projects/2024/Summary.md"),
		md("archive/2023/Summary.md"),
	})

	// A partial path that is not an index key still resolves by suffix.
	res, found := ix.Lookup("2024/Summary")
	require.True(t, found)
	assert.Equal(t, "projects/2024/Summary.md", res.File.RelPath)
	assert.False(t, res.Ambiguous)
}

func TestLookupNonASCII(t *testing.T) {
	ix := NewIndex([]*SourceFile{
		md("notes/日本語.md"),
		md("Übersicht.md"),
	})

	res, found := ix.Lookup("日本語")
	require.True(t, found)
	assert.Equal(t, "notes/日本語.md", res.File.RelPath)

	res, found = ix.Lookup("Übersicht")
	require.True(t, found)
	assert.Equal(t, "Übersicht.md", res.File.RelPath)
}
