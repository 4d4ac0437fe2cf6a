package exporter

import (
	"fmt"
	"strings"

	"github.com/verneri/obsidian-export/internal/vault"
)

// FrontmatterStrategy controls what happens to YAML frontmatter on export.
type FrontmatterStrategy int

const (
	// FrontmatterAuto passes frontmatter through unchanged.
	FrontmatterAuto FrontmatterStrategy = iota
	// FrontmatterAlways adds an empty frontmatter block to notes without one.
	FrontmatterAlways
	// FrontmatterNever strips frontmatter from the output.
	FrontmatterNever
)

func (s FrontmatterStrategy) String() string {
	switch s {
	case FrontmatterAlways:
		return "always"
	case FrontmatterNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseFrontmatterStrategy maps a config or flag value to a strategy.
func ParseFrontmatterStrategy(name string) (FrontmatterStrategy, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FrontmatterAuto, nil
	case "always":
		return FrontmatterAlways, nil
	case "never":
		return FrontmatterNever, nil
	}
	return FrontmatterAuto, fmt.Errorf("unknown frontmatter strategy %q", name)
}

// WalkOptions re-exports the vault walk configuration for callers of the
// driver.
type WalkOptions = vault.WalkOptions

// DefaultWalkOptions returns the walk behavior used when none is configured.
func DefaultWalkOptions() WalkOptions {
	return vault.DefaultWalkOptions()
}

// DefaultEmbedDepth bounds recursive embed expansion.
const DefaultEmbedDepth = 10
