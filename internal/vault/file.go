package vault

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileKind classifies a source file for export purposes.
type FileKind int

const (
	Markdown FileKind = iota
	Binary
)

// SourceFile is a single file discovered under the vault root.
type SourceFile struct {
	AbsPath string
	RelPath string // slash-separated, relative to the vault root
	Kind    FileKind
}

// IsMarkdown returns true for files whose content is processed rather than
// copied verbatim.
func (f *SourceFile) IsMarkdown() bool {
	return f.Kind == Markdown
}

// KindForPath classifies a file by its extension.
func KindForPath(path string) FileKind {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return Markdown
	}
	return Binary
}

// SplitFrontmatter separates a YAML frontmatter block from the note body.
//
// The split is byte-preserving: frontmatter includes both `---` delimiter
// lines and a single blank line following the block (when present), so that
// frontmatter+body always reassembles to the original content. A missing or
// unterminated block yields nil frontmatter and the full content as body.
func SplitFrontmatter(content []byte) (frontmatter, body []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	offset := bytes.IndexByte(content, '\n') + 1
	for offset < len(content) {
		var line []byte
		next := len(content)
		if i := bytes.IndexByte(content[offset:], '\n'); i != -1 {
			next = offset + i + 1
			line = content[offset : offset+i]
		} else {
			line = content[offset:]
		}
		if string(bytes.TrimRight(line, " \t\r")) == "---" {
			end := next
			rest := content[end:]
			if bytes.HasPrefix(rest, []byte("\n")) {
				end++
			} else if bytes.HasPrefix(rest, []byte("\r\n")) {
				end += 2
			}
			return content[:end], content[end:]
		}
		offset = next
	}

	return nil, content
}

// ValidateFrontmatter checks that a frontmatter block (as returned by
// SplitFrontmatter, delimiters included) holds well-formed YAML.
func ValidateFrontmatter(frontmatter []byte) error {
	if len(frontmatter) == 0 {
		return nil
	}

	inner := frontmatter
	if i := bytes.IndexByte(inner, '\n'); i != -1 {
		inner = inner[i+1:]
	}
	if i := bytes.LastIndex(inner, []byte("---")); i != -1 {
		inner = inner[:i]
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(inner, &doc); err != nil {
		return fmt.Errorf("parsing frontmatter: %w", err)
	}
	return nil
}
