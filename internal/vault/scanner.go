package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// WalkOptions control how the vault tree is traversed.
type WalkOptions struct {
	// IgnoreFilename is the name of the per-directory ignore file whose
	// gitignore-style rules apply to that directory and its descendants.
	IgnoreFilename string
	// FollowSymlinks descends into symlinked files and directories.
	FollowSymlinks bool
	// IncludeHidden keeps dot-prefixed files and directories in the walk.
	IncludeHidden bool
}

// DefaultWalkOptions returns the walk behavior used when none is configured.
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{IgnoreFilename: ".export-ignore"}
}

// Scanner walks a vault tree and classifies the files it finds.
type Scanner struct {
	opts WalkOptions
}

// NewScanner creates a scanner with the given walk options.
func NewScanner(opts WalkOptions) *Scanner {
	if opts.IgnoreFilename == "" {
		opts.IgnoreFilename = ".export-ignore"
	}
	return &Scanner{opts: opts}
}

// scopedIgnore is a compiled ignore file bound to the directory it lives in.
// Its rules only apply to paths below that directory.
type scopedIgnore struct {
	dir     string
	matcher *gitignore.GitIgnore
}

// Walk returns every included file under root in lexicographic directory
// order. Ignored directories are not descended; ignore files themselves are
// never part of the result.
func (s *Scanner) Walk(root string) ([]*SourceFile, error) {
	var files []*SourceFile
	if err := s.walkDir(root, root, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Scanner) walkDir(root, dir string, ignores []*scopedIgnore, files *[]*SourceFile) error {
	ignorePath := filepath.Join(dir, s.opts.IgnoreFilename)
	if _, err := os.Stat(ignorePath); err == nil {
		matcher, err := gitignore.CompileIgnoreFile(ignorePath)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", ignorePath, err)
		}
		ignores = append(ignores, &scopedIgnore{dir: dir, matcher: matcher})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == s.opts.IgnoreFilename {
			continue
		}
		if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if !s.opts.FollowSymlinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("resolving symlink %s: %w", path, err)
			}
			isDir = info.IsDir()
		}

		if excluded(ignores, path, isDir) {
			continue
		}

		if isDir {
			if err := s.walkDir(root, path, ignores, files); err != nil {
				return err
			}
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		*files = append(*files, &SourceFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
			Kind:    KindForPath(name),
		})
	}
	return nil
}

// excluded applies ignore rules from the root down. The deepest rule that
// matches decides, so negations in nested ignore files can re-include paths
// their ancestors excluded.
func excluded(ignores []*scopedIgnore, path string, isDir bool) bool {
	ignored := false
	for _, scope := range ignores {
		rel, err := filepath.Rel(scope.dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		if matched, pattern := scope.matcher.MatchesPathHow(rel); pattern != nil {
			ignored = matched
		}
		if isDir {
			if matched, pattern := scope.matcher.MatchesPathHow(rel + "/"); pattern != nil {
				ignored = matched
			}
		}
	}
	return ignored
}
