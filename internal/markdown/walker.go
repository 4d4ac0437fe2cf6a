package markdown

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// EventKind identifies the kind of a walker event.
type EventKind int

const (
	// EventText covers plain source bytes with no special meaning.
	EventText EventKind = iota
	// EventCodeSpan covers the inside of an inline code span.
	EventCodeSpan
	// EventCodeBlock covers the lines of a fenced or indented code block.
	EventCodeBlock
	// EventInlineHTML covers raw HTML, inline or block-level.
	EventInlineHTML
	// EventLinkLike covers a [[...]] or ![[...]] token found outside any
	// code or HTML context.
	EventLinkLike
)

// Event is a span of the source, tagged with how the exporter should treat
// it. Events cover every byte of the source exactly once, in order.
type Event struct {
	Kind  EventKind
	Start int
	End   int
}

// Heading is a heading together with the source span of its full line(s).
// End points just past the final line of the heading, including its newline.
type Heading struct {
	Level int
	Text  string
	Start int
	End   int
}

// Paragraph is the source span of one paragraph's lines.
type Paragraph struct {
	Start int
	End   int
}

// Document is the result of walking one markdown source.
type Document struct {
	Source     []byte
	Events     []Event
	Headings   []Heading
	Paragraphs []Paragraph
}

var wikiLinkPattern = regexp.MustCompile(`!?\[\[[^\n\[\]]+\]\]`)

// Parse walks source and returns its event stream along with the heading and
// paragraph structure. Wiki-link tokens inside code spans, code blocks, or
// raw HTML are never reported as EventLinkLike.
func Parse(source []byte) *Document {
	doc := &Document{Source: source}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(source))

	var opaque []Event
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if start, end, ok := blockSpan(n); ok {
				opaque = append(opaque, Event{Kind: EventCodeBlock, Start: start, End: end})
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			if start, end, ok := blockSpan(n); ok {
				opaque = append(opaque, Event{Kind: EventInlineHTML, Start: start, End: end})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok && t.Segment.Len() > 0 {
					opaque = append(opaque, Event{Kind: EventCodeSpan, Start: t.Segment.Start, End: t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				if seg.Len() > 0 {
					opaque = append(opaque, Event{Kind: EventInlineHTML, Start: seg.Start, End: seg.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if h, ok := headingFromNode(node, source); ok {
				doc.Headings = append(doc.Headings, h)
			}
		case *ast.Paragraph:
			if start, end, ok := blockSpan(n); ok {
				doc.Paragraphs = append(doc.Paragraphs, Paragraph{Start: start, End: end})
			}
		}
		return ast.WalkContinue, nil
	})

	sort.Slice(opaque, func(i, j int) bool { return opaque[i].Start < opaque[j].Start })
	links := scanWikiLinks(source, opaque)
	doc.Events = assemble(source, opaque, links)
	return doc
}

// blockSpan returns the byte range covered by a block node's lines.
func blockSpan(n ast.Node) (start, end int, ok bool) {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0, 0, false
	}
	return lines.At(0).Start, lines.At(lines.Len() - 1).Stop, true
}

func headingFromNode(n *ast.Heading, source []byte) (Heading, bool) {
	anchor := -1
	if lines := n.Lines(); lines.Len() > 0 {
		anchor = lines.At(0).Start
	} else {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				anchor = t.Segment.Start
				break
			}
		}
	}
	if anchor < 0 || anchor > len(source) {
		return Heading{}, false
	}

	start := lineStart(source, anchor)
	end := lineEnd(source, anchor)
	// A setext heading's underline is part of the heading's source lines.
	if !bytes.HasPrefix(bytes.TrimLeft(source[start:end], " "), []byte("#")) {
		end = lineEnd(source, end)
	}
	return Heading{
		Level: n.Level,
		Text:  headingText(source[start:end]),
		Start: start,
		End:   end,
	}, true
}

func lineStart(source []byte, offset int) int {
	return bytes.LastIndexByte(source[:offset], '\n') + 1
}

// lineEnd returns the offset just past the newline of the line containing
// offset, or the end of the source when the line is unterminated.
func lineEnd(source []byte, offset int) int {
	if offset >= len(source) {
		return len(source)
	}
	if i := bytes.IndexByte(source[offset:], '\n'); i != -1 {
		return offset + i + 1
	}
	return len(source)
}

func headingText(line []byte) string {
	s := string(line)
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "\r")
	s = strings.TrimLeft(s, "# \t")
	s = strings.TrimRight(s, " \t")
	s = strings.TrimRight(s, "#")
	return strings.TrimRight(s, " \t")
}

func scanWikiLinks(source []byte, opaque []Event) []Event {
	var links []Event
	for _, m := range wikiLinkPattern.FindAllIndex(source, -1) {
		if overlapsAny(opaque, m[0], m[1]) {
			continue
		}
		links = append(links, Event{Kind: EventLinkLike, Start: m[0], End: m[1]})
	}
	return links
}

func overlapsAny(spans []Event, start, end int) bool {
	for _, s := range spans {
		if start < s.End && end > s.Start {
			return true
		}
	}
	return false
}

// assemble merges the marked spans into a single ordered stream, filling the
// gaps with EventText so the events cover every source byte exactly once.
func assemble(source []byte, opaque, links []Event) []Event {
	marked := make([]Event, 0, len(opaque)+len(links))
	marked = append(marked, opaque...)
	marked = append(marked, links...)
	sort.Slice(marked, func(i, j int) bool { return marked[i].Start < marked[j].Start })

	var events []Event
	cursor := 0
	for _, ev := range marked {
		if ev.Start < cursor {
			continue
		}
		if ev.Start > cursor {
			events = append(events, Event{Kind: EventText, Start: cursor, End: ev.Start})
		}
		events = append(events, ev)
		cursor = ev.End
	}
	if cursor < len(source) {
		events = append(events, Event{Kind: EventText, Start: cursor, End: len(source)})
	}
	return events
}
