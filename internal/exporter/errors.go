package exporter

import (
	"fmt"
	"strings"
)

// PathDoesNotExistError reports a missing source root or start-at path.
type PathDoesNotExistError struct {
	Path string
}

func (e *PathDoesNotExistError) Error() string {
	return fmt.Sprintf("path does not exist: %s", e.Path)
}

// ReadError wraps a failed filesystem read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed write while materializing the output tree.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FileExportError wraps any failure while exporting a single file, carrying
// the offending source path.
type FileExportError struct {
	Path string
	Err  error
}

func (e *FileExportError) Error() string {
	return fmt.Sprintf("exporting %s: %v", e.Path, e.Err)
}

func (e *FileExportError) Unwrap() error { return e.Err }

// RecursionLimitExceededError reports an embed chain deeper than the
// configured limit.
type RecursionLimitExceededError struct {
	Path  string
	Chain []string
}

func (e *RecursionLimitExceededError) Error() string {
	return fmt.Sprintf("embed recursion limit exceeded at %s (chain: %s)",
		e.Path, strings.Join(e.Chain, " -> "))
}

// PathAlreadyExistsError reports two source files mapping to the same
// destination key.
type PathAlreadyExistsError struct {
	Destination string
}

func (e *PathAlreadyExistsError) Error() string {
	return fmt.Sprintf("destination already exists in result: %s", e.Destination)
}

// FrontmatterParseError reports malformed YAML frontmatter. It is a soft
// error: a warning by default, fatal in strict mode.
type FrontmatterParseError struct {
	Path string
	Err  error
}

func (e *FrontmatterParseError) Error() string {
	return fmt.Sprintf("malformed frontmatter in %s: %v", e.Path, e.Err)
}

func (e *FrontmatterParseError) Unwrap() error { return e.Err }

// ReferenceSyntaxError reports a wiki-link token that does not parse. It is
// a soft error: a warning by default, fatal in strict mode.
type ReferenceSyntaxError struct {
	Raw string
	Err error
}

func (e *ReferenceSyntaxError) Error() string {
	return fmt.Sprintf("invalid reference %s: %v", e.Raw, e.Err)
}

func (e *ReferenceSyntaxError) Unwrap() error { return e.Err }
