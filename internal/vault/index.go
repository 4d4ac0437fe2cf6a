package vault

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Index maps the lookup keys a wiki-link may use to the files they name.
//
// Every markdown file is reachable by its basename without extension, its
// relative path without extension, and both forms with the .md extension.
// Binary files are reachable by their relative path and basename. When a key
// names more than one file, or when only a path suffix matches, the entry
// with the fewest path segments wins; ties fall to the lexicographically
// smallest relative path and are reported as ambiguous.
type Index struct {
	keys  map[string][]*SourceFile
	files []*SourceFile
}

// NewIndex builds the lookup index over the full set of included files.
func NewIndex(files []*SourceFile) *Index {
	ix := &Index{
		keys:  make(map[string][]*SourceFile),
		files: files,
	}
	for _, f := range files {
		if f.Kind == Markdown {
			stem := f.RelPath[:len(f.RelPath)-len(path.Ext(f.RelPath))]
			ix.add(stem, f)
			ix.add(path.Base(stem), f)
			ix.add(f.RelPath, f)
			ix.add(path.Base(f.RelPath), f)
		} else {
			ix.add(f.RelPath, f)
			ix.add(path.Base(f.RelPath), f)
		}
	}
	return ix
}

func (ix *Index) add(key string, f *SourceFile) {
	existing := ix.keys[key]
	if len(existing) > 0 && existing[len(existing)-1] == f {
		return
	}
	ix.keys[key] = append(ix.keys[key], f)
}

// Resolution reports how a lookup concluded.
type Resolution struct {
	File       *SourceFile
	Ambiguous  bool
	Candidates []*SourceFile
}

// Lookup resolves a wiki-link target to a source file. The second return is
// false when nothing in the vault matches.
func (ix *Index) Lookup(target string) (Resolution, bool) {
	norm := NormalizeTarget(target)
	if norm == "" {
		return Resolution{}, false
	}

	if matches, ok := ix.keys[norm]; ok {
		return pick(matches), true
	}

	// No exact key: fall back to segment-aligned suffix matching against
	// every relative path, with and without the markdown extension.
	var candidates []*SourceFile
	for _, f := range ix.files {
		if suffixMatch(f.RelPath, norm) || (f.Kind == Markdown && suffixMatch(f.RelPath, norm+".md")) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return Resolution{}, false
	}
	return pick(candidates), true
}

func suffixMatch(rel, suffix string) bool {
	return rel == suffix || strings.HasSuffix(rel, "/"+suffix)
}

func pick(matches []*SourceFile) Resolution {
	if len(matches) == 1 {
		return Resolution{File: matches[0]}
	}
	sorted := make([]*SourceFile, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := segments(sorted[i].RelPath), segments(sorted[j].RelPath)
		if si != sj {
			return si < sj
		}
		return sorted[i].RelPath < sorted[j].RelPath
	})
	ambiguous := segments(sorted[1].RelPath) == segments(sorted[0].RelPath)
	return Resolution{File: sorted[0], Ambiguous: ambiguous, Candidates: sorted}
}

func segments(rel string) int {
	return strings.Count(rel, "/") + 1
}

// NormalizeTarget prepares a raw wiki-link target for index lookup:
// backslashes become forward slashes, percent-escapes are decoded, and
// surrounding whitespace is trimmed.
func NormalizeTarget(target string) string {
	t := strings.TrimSpace(strings.ReplaceAll(target, "\\", "/"))
	if strings.Contains(t, "%") {
		if decoded, err := url.QueryUnescape(t); err == nil {
			t = decoded
		}
	}
	return t
}
