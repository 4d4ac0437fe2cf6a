package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Intro", "intro"},
		{"Section 1", "section-1"},
		{"Mixed CASE Title", "mixed-case-title"},
		{"What's new?", "what-s-new"},
		{"  spaced  out  ", "spaced-out"},
		{"a--b", "a-b"},
		{"C++ & Go!", "c-go"},
		{"日本語 heading", "日本語-heading"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestEncodeLinkPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Target.md", "Target.md"},
		{"Note A.md", "Note%20A.md"},
		{"../Note A.md", "../Note%20A.md"},
		{"dir/with space/f.md", "dir/with%20space/f.md"},
		{"odd#name.md", "odd%23name.md"},
		{"q&a.md", "q%26a.md"},
		{"日本語.md", "日本語.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeLinkPath(tt.in), "input %q", tt.in)
	}
}
