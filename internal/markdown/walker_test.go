package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkSpans(doc *Document) []string {
	var spans []string
	for _, ev := range doc.Events {
		if ev.Kind == EventLinkLike {
			spans = append(spans, string(doc.Source[ev.Start:ev.End]))
		}
	}
	return spans
}

// Every byte of the source must be covered exactly once, in order.
func assertCoverage(t *testing.T, doc *Document) {
	t.Helper()
	offset := 0
	for _, ev := range doc.Events {
		require.Equal(t, offset, ev.Start, "events must be contiguous")
		require.Greater(t, ev.End, ev.Start, "events must be non-empty")
		offset = ev.End
	}
	require.Equal(t, len(doc.Source), offset, "events must cover the full source")
}

func TestParseFindsWikiLinks(t *testing.T) {
	src := []byte("See [[Target]] and ![[pic.png]] plus [[A#B|label]] here.\n")
	doc := Parse(src)

	assert.Equal(t, []string{"[[Target]]", "![[pic.png]]", "[[A#B|label]]"}, linkSpans(doc))
	assertCoverage(t, doc)
}

func TestParseSkipsCodeContexts(t *testing.T) {
	src := []byte("Real [[Link]].\n\n" +
		"```\n[[in fenced code]]\n```\n\n" +
		"Inline `[[in code span]]` text.\n\n" +
		"    [[in indented code]]\n")
	doc := Parse(src)

	assert.Equal(t, []string{"[[Link]]"}, linkSpans(doc))
	assertCoverage(t, doc)
}

func TestParseLinkInsideHeading(t *testing.T) {
	src := []byte("# See [[Other]]\n\nBody.\n")
	doc := Parse(src)

	assert.Equal(t, []string{"[[Other]]"}, linkSpans(doc))
	require.Len(t, doc.Headings, 1)
	assert.Equal(t, 1, doc.Headings[0].Level)
}

func TestParseHeadings(t *testing.T) {
	src := []byte("# Top\n\nIntro.\n\n## Nested Section\n\nMore.\n")
	doc := Parse(src)

	require.Len(t, doc.Headings, 2)
	assert.Equal(t, 1, doc.Headings[0].Level)
	assert.Equal(t, "Top", doc.Headings[0].Text)
	assert.Equal(t, "# Top\n", string(src[doc.Headings[0].Start:doc.Headings[0].End]))
	assert.Equal(t, 2, doc.Headings[1].Level)
	assert.Equal(t, "Nested Section", doc.Headings[1].Text)
}

func TestParseParagraphs(t *testing.T) {
	src := []byte("First paragraph\nstill first. ^tag1\n\nSecond paragraph.\n")
	doc := Parse(src)

	require.Len(t, doc.Paragraphs, 2)
	first := string(src[doc.Paragraphs[0].Start:doc.Paragraphs[0].End])
	assert.Contains(t, first, "still first. ^tag1")
	assert.NotContains(t, first, "Second")
}

func TestParseEmptySource(t *testing.T) {
	doc := Parse(nil)
	assert.Empty(t, doc.Events)
	assert.Empty(t, doc.Headings)
}
