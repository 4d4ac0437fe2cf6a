package markdown

import "strings"

// SliceHeading extracts the region under the first heading whose text equals
// heading, case-insensitively, after both sides drop their leading # marker
// and surrounding whitespace. The region runs from the line after the
// heading to the next heading of equal or shallower level, or end of file.
func SliceHeading(doc *Document, heading string) (string, bool) {
	want := NormalizeHeading(heading)
	for i, h := range doc.Headings {
		if !strings.EqualFold(NormalizeHeading(h.Text), want) {
			continue
		}
		start := h.End
		end := len(doc.Source)
		for _, next := range doc.Headings[i+1:] {
			if next.Level <= h.Level {
				end = next.Start
				break
			}
		}
		return string(doc.Source[start:end]), true
	}
	return "", false
}

// SliceBlock extracts the paragraph whose final line ends with ^id,
// exclusive of the marker itself.
func SliceBlock(doc *Document, id string) (string, bool) {
	marker := "^" + id
	for _, p := range doc.Paragraphs {
		para := strings.TrimRight(string(doc.Source[p.Start:p.End]), "\n")
		trimmed := strings.TrimRight(para, " \t")
		if !strings.HasSuffix(trimmed, marker) {
			continue
		}
		body := trimmed[:len(trimmed)-len(marker)]
		// The marker must stand alone at the end of its line.
		if body != "" && !strings.HasSuffix(body, " ") && !strings.HasSuffix(body, "\t") && !strings.HasSuffix(body, "\n") {
			continue
		}
		return strings.TrimRight(body, " \t\n"), true
	}
	return "", false
}

// NormalizeHeading strips a heading's leading marker and surrounding
// whitespace so spelled-out references compare equal to parsed headings.
func NormalizeHeading(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimLeft(t, "#")
	return strings.TrimSpace(t)
}
