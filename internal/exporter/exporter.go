package exporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/verneri/obsidian-export/internal/markdown"
	"github.com/verneri/obsidian-export/internal/vault"
)

// Exporter drives a single vault export. Configure it with the setters, then
// call Run to obtain the result map from destination-relative paths to
// output content.
type Exporter struct {
	source          string
	startAt         string
	strategy        FrontmatterStrategy
	recursiveEmbeds bool
	walkOptions     WalkOptions
	embedDepth      int
	strict          bool

	// per-run state
	index    *vault.Index
	dest     map[string]string
	result   map[string][]byte
	assets   map[string]*vault.SourceFile
	warnings []string
	soft     *multierror.Error
}

// New creates an exporter rooted at source, which may be a vault directory
// or a single markdown file.
func New(source string) *Exporter {
	return &Exporter{
		source:          source,
		strategy:        FrontmatterAuto,
		recursiveEmbeds: true,
		walkOptions:     DefaultWalkOptions(),
		embedDepth:      DefaultEmbedDepth,
	}
}

// FrontmatterStrategy sets how frontmatter is carried into the output.
func (e *Exporter) FrontmatterStrategy(s FrontmatterStrategy) *Exporter {
	e.strategy = s
	return e
}

// ProcessEmbedsRecursively controls whether an embed whose target is already
// being expanded is expanded again (true, bounded by the depth limit) or
// demoted to a regular link (false).
func (e *Exporter) ProcessEmbedsRecursively(v bool) *Exporter {
	e.recursiveEmbeds = v
	return e
}

// StartAt restricts the export to files at or below the given sub-path. The
// name index still spans the full vault, so references into unexported
// regions keep resolving.
func (e *Exporter) StartAt(path string) *Exporter {
	e.startAt = path
	return e
}

// WalkOptions sets the traversal behavior for the source tree.
func (e *Exporter) WalkOptions(opts WalkOptions) *Exporter {
	e.walkOptions = opts
	return e
}

// EmbedDepth sets the maximum depth of nested embeds.
func (e *Exporter) EmbedDepth(n int) *Exporter {
	if n > 0 {
		e.embedDepth = n
	}
	return e
}

// Strict makes malformed frontmatter and unparseable references fail the run
// instead of downgrading to warnings.
func (e *Exporter) Strict(v bool) *Exporter {
	e.strict = v
	return e
}

// Warnings reports the non-fatal findings of the most recent Run: unresolved
// references, ambiguous lookups, and (outside strict mode) soft errors.
func (e *Exporter) Warnings() []string {
	return e.warnings
}

// Run exports the vault. On success every exported file appears in the
// returned map under its destination-relative path; on failure no partial
// result is exposed.
func (e *Exporter) Run() (map[string][]byte, error) {
	e.warnings = nil
	e.soft = nil
	e.assets = make(map[string]*vault.SourceFile)

	source, err := filepath.Abs(e.source)
	if err != nil {
		return nil, fmt.Errorf("resolving source path: %w", err)
	}
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PathDoesNotExistError{Path: e.source}
		}
		return nil, &ReadError{Path: source, Err: err}
	}

	root := source
	startAt := source
	if !info.IsDir() {
		root = filepath.Dir(source)
	}
	if e.startAt != "" {
		startAt, err = filepath.Abs(e.startAt)
		if err != nil {
			return nil, fmt.Errorf("resolving start-at path: %w", err)
		}
		if _, err := os.Stat(startAt); err != nil {
			if os.IsNotExist(err) {
				return nil, &PathDoesNotExistError{Path: e.startAt}
			}
			return nil, &ReadError{Path: startAt, Err: err}
		}
	}

	files, err := vault.NewScanner(e.walkOptions).Walk(root)
	if err != nil {
		return nil, &ReadError{Path: root, Err: err}
	}
	e.index = vault.NewIndex(files)

	// Destination keys are relative to the start-at directory, or to the
	// containing directory when start-at names a single file.
	destBase := startAt
	if fi, err := os.Stat(startAt); err == nil && !fi.IsDir() {
		destBase = filepath.Dir(startAt)
	}
	e.dest = make(map[string]string, len(files))
	for _, f := range files {
		if rel, err := filepath.Rel(destBase, f.AbsPath); err == nil {
			e.dest[f.AbsPath] = filepath.ToSlash(rel)
		}
	}

	e.result = make(map[string][]byte)
	for _, f := range files {
		if !underStartAt(f.AbsPath, startAt) {
			continue
		}
		destKey := e.dest[f.AbsPath]
		if _, exists := e.result[destKey]; exists {
			return nil, &FileExportError{Path: f.AbsPath, Err: &PathAlreadyExistsError{Destination: destKey}}
		}
		var content []byte
		var exportErr error
		if f.IsMarkdown() {
			content, exportErr = e.exportNote(f)
		} else {
			content, exportErr = os.ReadFile(f.AbsPath)
			if exportErr != nil {
				exportErr = &ReadError{Path: f.AbsPath, Err: exportErr}
			}
		}
		if exportErr != nil {
			return nil, &FileExportError{Path: f.AbsPath, Err: exportErr}
		}
		e.result[destKey] = content
	}

	if err := e.copyMarkedAssets(startAt); err != nil {
		return nil, err
	}

	if e.strict {
		if err := e.soft.ErrorOrNil(); err != nil {
			return nil, err
		}
	}
	return e.result, nil
}

// exportNote reads, processes, and reassembles one top-level markdown file.
func (e *Exporter) exportNote(f *vault.SourceFile) ([]byte, error) {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return nil, &ReadError{Path: f.AbsPath, Err: err}
	}

	frontmatter, body := vault.SplitFrontmatter(content)
	if len(frontmatter) > 0 {
		if err := vault.ValidateFrontmatter(frontmatter); err != nil {
			e.softError(f.AbsPath, &FrontmatterParseError{Path: f.AbsPath, Err: err})
		}
	}

	processed, err := e.processBody(f, body, []string{f.AbsPath})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	switch e.strategy {
	case FrontmatterAlways:
		if len(frontmatter) == 0 {
			out.WriteString("---\n---\n\n")
		} else {
			out.Write(frontmatter)
		}
	case FrontmatterNever:
		// omitted
	default:
		out.Write(frontmatter)
	}
	out.WriteString(processed)
	return out.Bytes(), nil
}

// processBody walks a note body and rewrites every wiki-link token, leaving
// all other bytes untouched.
func (e *Exporter) processBody(f *vault.SourceFile, body []byte, stack []string) (string, error) {
	doc := markdown.Parse(body)
	var out bytes.Buffer
	for _, ev := range doc.Events {
		raw := body[ev.Start:ev.End]
		if ev.Kind != markdown.EventLinkLike {
			out.Write(raw)
			continue
		}
		rendered, err := e.renderReference(f, string(raw), stack)
		if err != nil {
			return "", err
		}
		out.WriteString(rendered)
	}
	return out.String(), nil
}

func (e *Exporter) renderReference(f *vault.SourceFile, raw string, stack []string) (string, error) {
	ref, err := markdown.ParseToken(raw)
	if err != nil {
		e.softError(f.AbsPath, &ReferenceSyntaxError{Raw: raw, Err: err})
		return raw, nil
	}

	var target *vault.SourceFile
	if ref.Target == "" {
		target = f
	} else {
		res, found := e.index.Lookup(ref.Target)
		if !found {
			e.warnf("no file found for reference %s in %s", raw, f.RelPath)
			if ref.Embed || ref.Section == nil {
				return raw, nil
			}
			return renderBrokenLink(ref), nil
		}
		if res.Ambiguous {
			e.warnf("reference %q in %s is ambiguous, using %s (of %s)",
				ref.Target, f.RelPath, res.File.RelPath, candidateList(res.Candidates))
		}
		target = res.File
	}

	if ref.Embed {
		return e.renderEmbed(f, target, ref, stack)
	}
	return e.renderLink(f, target, ref), nil
}

// renderEmbed produces the replacement text for a ![[...]] token with a
// resolved target.
func (e *Exporter) renderEmbed(from, target *vault.SourceFile, ref markdown.Reference, stack []string) (string, error) {
	if target.IsMarkdown() {
		if stackContains(stack, target.AbsPath) && !e.recursiveEmbeds {
			return e.renderLink(from, target, ref), nil
		}
		if len(stack) >= e.embedDepth {
			chain := append(append([]string(nil), stack...), target.AbsPath)
			return "", &RecursionLimitExceededError{Path: target.AbsPath, Chain: chain}
		}
		body, err := e.embeddedNoteBody(target, append(stack, target.AbsPath))
		if err != nil {
			return "", err
		}
		if ref.Section == nil {
			return body, nil
		}
		doc := markdown.Parse([]byte(body))
		var sliced string
		var ok bool
		if ref.Section.Kind == markdown.SectionBlock {
			sliced, ok = markdown.SliceBlock(doc, ref.Section.Text)
		} else {
			sliced, ok = markdown.SliceHeading(doc, ref.Section.Text)
		}
		if !ok {
			e.warnf("section %q not found in %s (embedded from %s)",
				ref.Section.Display(), target.RelPath, from.RelPath)
			return "", nil
		}
		return sliced, nil
	}

	rel := markdown.EncodeLinkPath(e.relativeDestination(from, target))
	label := ref.DisplayLabel()
	switch assetKindFor(target.RelPath) {
	case assetImage:
		e.assets[target.AbsPath] = target
		return fmt.Sprintf("![%s](%s)", label, rel), nil
	case assetAudio:
		return fmt.Sprintf(`<audio controls src="%s"></audio>`, rel), nil
	case assetVideo:
		return fmt.Sprintf(`<video controls src="%s"></video>`, rel), nil
	case assetPDF:
		return fmt.Sprintf("[%s](%s)", label, rel), nil
	default:
		e.assets[target.AbsPath] = target
		return fmt.Sprintf("[%s](%s)", label, rel), nil
	}
}

// embeddedNoteBody exports a note for splicing into another: its frontmatter
// is stripped regardless of the configured strategy.
func (e *Exporter) embeddedNoteBody(target *vault.SourceFile, stack []string) (string, error) {
	content, err := os.ReadFile(target.AbsPath)
	if err != nil {
		return "", &ReadError{Path: target.AbsPath, Err: err}
	}
	_, body := vault.SplitFrontmatter(content)
	return e.processBody(target, body, stack)
}

// renderLink emits a regular markdown link for a resolved reference.
func (e *Exporter) renderLink(from, target *vault.SourceFile, ref markdown.Reference) string {
	rel := markdown.EncodeLinkPath(e.relativeDestination(from, target))
	return fmt.Sprintf("[%s](%s%s)", ref.DisplayLabel(), rel, fragmentFor(ref))
}

// renderBrokenLink keeps the link shape for a sectioned reference whose
// target no longer exists.
func renderBrokenLink(ref markdown.Reference) string {
	target := vault.NormalizeTarget(ref.Target)
	if !strings.HasSuffix(strings.ToLower(target), ".md") {
		target += ".md"
	}
	return fmt.Sprintf("[%s](%s%s)", ref.DisplayLabel(), markdown.EncodeLinkPath(target), fragmentFor(ref))
}

func fragmentFor(ref markdown.Reference) string {
	if ref.Section == nil {
		return ""
	}
	if ref.Section.Kind == markdown.SectionBlock {
		return "#^" + ref.Section.Text
	}
	return "#" + markdown.Slugify(ref.Section.Text)
}

// relativeDestination returns the path from the embedding note's destination
// directory to the target's destination, slash-separated.
func (e *Exporter) relativeDestination(from, target *vault.SourceFile) string {
	fromDest, okFrom := e.dest[from.AbsPath]
	targetDest, okTarget := e.dest[target.AbsPath]
	if !okFrom || !okTarget {
		return targetDest
	}
	rel, err := filepath.Rel(filepath.Dir(filepath.FromSlash(fromDest)), filepath.FromSlash(targetDest))
	if err != nil {
		return targetDest
	}
	return filepath.ToSlash(rel)
}

// copyMarkedAssets inserts embed-referenced binaries that the main loop did
// not already export, in deterministic destination order.
func (e *Exporter) copyMarkedAssets(startAt string) error {
	marked := make([]*vault.SourceFile, 0, len(e.assets))
	for _, f := range e.assets {
		marked = append(marked, f)
	}
	sort.Slice(marked, func(i, j int) bool { return e.dest[marked[i].AbsPath] < e.dest[marked[j].AbsPath] })

	for _, f := range marked {
		destKey, ok := e.dest[f.AbsPath]
		if !ok || !underStartAt(f.AbsPath, startAt) {
			continue
		}
		if _, exists := e.result[destKey]; exists {
			continue
		}
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return &FileExportError{Path: f.AbsPath, Err: &ReadError{Path: f.AbsPath, Err: err}}
		}
		e.result[destKey] = data
	}
	return nil
}

func (e *Exporter) warnf(format string, args ...interface{}) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

// softError downgrades recoverable per-file problems to warnings unless
// strict mode is on, in which case each is collected wrapped in a
// FileExportError naming the source file.
func (e *Exporter) softError(path string, err error) {
	if e.strict {
		e.soft = multierror.Append(e.soft, &FileExportError{Path: path, Err: err})
		return
	}
	e.warnings = append(e.warnings, err.Error())
}

func underStartAt(path, startAt string) bool {
	if path == startAt {
		return true
	}
	rel, err := filepath.Rel(startAt, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func stackContains(stack []string, path string) bool {
	for _, p := range stack {
		if p == path {
			return true
		}
	}
	return false
}

func candidateList(files []*vault.SourceFile) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.RelPath
	}
	return strings.Join(names, ", ")
}
