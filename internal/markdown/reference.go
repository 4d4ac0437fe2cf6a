package markdown

import (
	"fmt"
	"strings"
)

// SectionKind distinguishes heading references from block references.
type SectionKind int

const (
	SectionHeading SectionKind = iota
	SectionBlock
)

// Section names a part of a note: a heading by its text, or a paragraph by
// its block id (stored without the ^ prefix).
type Section struct {
	Kind SectionKind
	Text string
}

// Display returns the section as Obsidian shows it: block ids keep their ^.
func (s *Section) Display() string {
	if s.Kind == SectionBlock {
		return "^" + s.Text
	}
	return s.Text
}

// Reference is a parsed wiki-link or embed token.
type Reference struct {
	Target  string
	Section *Section
	Label   string
	Embed   bool
}

// ParseToken splits a raw [[...]] or ![[...]] span into a Reference.
func ParseToken(raw string) (Reference, error) {
	embed := strings.HasPrefix(raw, "!")
	inner := strings.TrimPrefix(raw, "!")
	if !strings.HasPrefix(inner, "[[") || !strings.HasSuffix(inner, "]]") || len(inner) < 5 {
		return Reference{}, fmt.Errorf("malformed wiki link token %q", raw)
	}
	return ParseReference(inner[2:len(inner)-2], embed)
}

// ParseReference parses the inner text of a wiki-link token. The surrounding
// brackets and embed marker must already be stripped; embed records which
// form the token came from.
//
// Grammar, applied in order: target until # or |; after # a section runs
// until |; after | the rest is the display label. Each part is trimmed. An
// empty target with a section is a self-reference.
func ParseReference(inner string, embed bool) (Reference, error) {
	ref := Reference{Embed: embed}

	if i := strings.IndexAny(inner, "#|"); i != -1 && inner[i] == '#' {
		ref.Target = strings.TrimSpace(inner[:i])
		rest := inner[i+1:]
		section := rest
		if j := strings.Index(rest, "|"); j != -1 {
			section = rest[:j]
			ref.Label = strings.TrimSpace(rest[j+1:])
		}
		section = strings.TrimSpace(section)
		if strings.HasPrefix(section, "^") {
			id := section[1:]
			if !validBlockID(id) {
				return Reference{}, fmt.Errorf("invalid block id %q", id)
			}
			ref.Section = &Section{Kind: SectionBlock, Text: id}
		} else {
			if section == "" {
				return Reference{}, fmt.Errorf("empty section in %q", inner)
			}
			ref.Section = &Section{Kind: SectionHeading, Text: section}
		}
	} else if i := strings.Index(inner, "|"); i != -1 {
		ref.Target = strings.TrimSpace(inner[:i])
		ref.Label = strings.TrimSpace(inner[i+1:])
	} else {
		ref.Target = strings.TrimSpace(inner)
	}

	if ref.Target == "" && ref.Section == nil {
		return Reference{}, fmt.Errorf("empty reference %q", inner)
	}
	return ref, nil
}

func validBlockID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// DisplayLabel returns the text rendered for this reference when no explicit
// label was written: the target alone, "target > section" when a section is
// named, or the section alone for self-references.
func (r Reference) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	switch {
	case r.Section == nil:
		return r.Target
	case r.Target == "":
		return r.Section.Display()
	default:
		return r.Target + " > " + r.Section.Display()
	}
}
