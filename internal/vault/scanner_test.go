package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func relPaths(files []*SourceFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	return paths
}

func TestWalkClassifiesFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"note.md":       "# Note\n",
		"pic.png":       "png-bytes",
		"sub/nested.md": "nested\n",
	})

	files, err := NewScanner(DefaultWalkOptions()).Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	byRel := make(map[string]*SourceFile)
	for _, f := range files {
		byRel[f.RelPath] = f
	}
	assert.Equal(t, Markdown, byRel["note.md"].Kind)
	assert.Equal(t, Binary, byRel["pic.png"].Kind)
	assert.Equal(t, Markdown, byRel["sub/nested.md"].Kind)
}

func TestWalkAppliesIgnoreRules(t *testing.T) {
	root := writeTree(t, map[string]string{
		".export-ignore": "ignored.md\nsub/\n",
		"a.md":           "a\n",
		"b.txt":          "b\n",
		"ignored.md":     "never seen\n",
		"sub/x.md":       "never seen either\n",
	})

	files, err := NewScanner(DefaultWalkOptions()).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "b.txt"}, relPaths(files))
}

func TestWalkNestedIgnoreWithNegation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"top.md":              "top\n",
		"keep/.export-ignore": "*.md\n!keep.md\n",
		"keep/drop.md":        "dropped\n",
		"keep/keep.md":        "kept\n",
	})

	files, err := NewScanner(DefaultWalkOptions()).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"top.md", "keep/keep.md"}, relPaths(files))
}

func TestWalkSkipsHiddenByDefault(t *testing.T) {
	root := writeTree(t, map[string]string{
		"visible.md":   "v\n",
		".hidden.md":   "h\n",
		".obsidian/ws": "{}\n",
	})

	files, err := NewScanner(DefaultWalkOptions()).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"visible.md"}, relPaths(files))

	opts := DefaultWalkOptions()
	opts.IncludeHidden = true
	files, err = NewScanner(opts).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"visible.md", ".hidden.md", ".obsidian/ws"}, relPaths(files))
}

func TestWalkNeverReturnsIgnoreFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		".export-ignore":     "nothing\n",
		"sub/.export-ignore": "nothing\n",
		"sub/note.md":        "n\n",
	})

	files, err := NewScanner(DefaultWalkOptions()).Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sub/note.md"}, relPaths(files))
}

func TestWalkDeterministicOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.md":     "b\n",
		"a.md":     "a\n",
		"c/d.md":   "d\n",
		"c/a.md":   "a\n",
		"zette.md": "z\n",
	})

	files, err := NewScanner(DefaultWalkOptions()).Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md", "c/a.md", "c/d.md", "zette.md"}, relPaths(files))
}
