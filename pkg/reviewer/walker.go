package reviewer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// CollectFiles expands a directory target into the list of regular files
// beneath root, in traversal order. Symbolic links are skipped, as are any
// paths matching an ignore pattern. Unreadable entries below the root are
// skipped with a warning; a failure on the root itself is fatal.
//
// Ignore patterns use gitignore-style globs matched against the path
// relative to root: a trailing '/' restricts a pattern to directories, a
// pattern without a separator matches any path component.
func CollectFiles(root string, ignorePatterns []string, loggerHandler slog.Handler) ([]string, error) {
	if loggerHandler == nil {
		loggerHandler = slog.DiscardHandler
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "walker"))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root %q: %w", ErrWalkFailed, root, err)
	}
	matcher := newIgnoreMatcher(ignorePatterns)

	var files []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return fmt.Errorf("%w: %w", ErrWalkFailed, err)
			}
			logger.Warn("Skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matcher.Match(rel, d.IsDir()) {
			logger.Debug("Path ignored", slog.String("path", rel), slog.Bool("isDir", d.IsDir()))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	logger.Debug("Directory walk completed", slog.String("root", absRoot), slog.Int("files", len(files)))
	return files, nil
}

type ignoreMatcher struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern   string
	isDirOnly bool
}

func newIgnoreMatcher(raw []string) *ignoreMatcher {
	m := &ignoreMatcher{}
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		ip := ignorePattern{}
		if strings.HasSuffix(p, "/") {
			ip.isDirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		ip.pattern = filepath.ToSlash(p)
		m.patterns = append(m.patterns, ip)
	}
	return m
}

// Match reports whether the relative path matches any pattern. A pattern
// without a '/' is tried against every path component, mirroring gitignore.
func (m *ignoreMatcher) Match(rel string, isDir bool) bool {
	for _, p := range m.patterns {
		if p.isDirOnly && !isDir {
			continue
		}
		if ok, _ := filepath.Match(p.pattern, rel); ok {
			return true
		}
		if !strings.Contains(p.pattern, "/") {
			for _, seg := range strings.Split(rel, "/") {
				if ok, _ := filepath.Match(p.pattern, seg); ok {
					return true
				}
			}
		}
	}
	return false
}
