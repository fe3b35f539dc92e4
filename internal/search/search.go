// SPDX-License-Identifier: MPL-2.0

package search

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	excludePrefix       = "!"
	legacyIncludePrefix = "+:"
	legacyExcludePrefix = "-:"
)

// ErrInvalidPattern is returned for a malformed glob.
var ErrInvalidPattern = errors.New("invalid search pattern")

// Matcher resolves glob patterns against a filesystem.
type Matcher struct {
	fs     afero.Fs
	root   string
	logger *log.Logger
}

// NewMatcher creates a Matcher. Relative patterns are resolved against root.
func NewMatcher(fsys afero.Fs, root string, logger *log.Logger) *Matcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Matcher{fs: fsys, root: root, logger: logger}
}

// SplitPatterns splits multi-line pattern input into trimmed, non-empty patterns.
func SplitPatterns(inputs ...string) []string {
	var out []string
	for _, in := range inputs {
		for _, line := range strings.Split(in, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// Match applies patterns in order. A pattern starting with "!" removes the
// paths it matches from the results collected so far. The result is sorted
// and free of duplicates.
func (m *Matcher) Match(patterns []string) ([]string, error) {
	found := map[string]struct{}{}
	for _, pat := range SplitPatterns(patterns...) {
		exclude := strings.HasPrefix(pat, excludePrefix)
		if exclude {
			pat = strings.TrimSpace(strings.TrimPrefix(pat, excludePrefix))
		}

		g, err := compileGlob(m.absolute(pat))
		if err != nil {
			return nil, err
		}

		if exclude {
			for path := range found {
				if g.matchPath(path) {
					delete(found, path)
				}
			}
			continue
		}

		matches, err := m.find(g)
		if err != nil {
			return nil, err
		}
		m.logger.Debug("Pattern matched", "pattern", pat, "count", len(matches))
		for _, path := range matches {
			found[path] = struct{}{}
		}
	}
	return sortedKeys(found), nil
}

// MatchLegacy resolves a ";"-separated filter spec. Entries prefixed with
// "-:" exclude, entries prefixed with "+:" or nothing include. Excludes apply
// to the union of all includes.
func (m *Matcher) MatchLegacy(spec string) ([]string, error) {
	var includes, excludes []*glob
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		target := &includes
		switch {
		case strings.HasPrefix(entry, legacyExcludePrefix):
			entry, target = strings.TrimPrefix(entry, legacyExcludePrefix), &excludes
		case strings.HasPrefix(entry, legacyIncludePrefix):
			entry = strings.TrimPrefix(entry, legacyIncludePrefix)
		}
		g, err := compileGlob(m.absolute(strings.TrimSpace(entry)))
		if err != nil {
			return nil, err
		}
		*target = append(*target, g)
	}

	found := map[string]struct{}{}
	for _, g := range includes {
		matches, err := m.find(g)
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			found[path] = struct{}{}
		}
	}
	for path := range found {
		for _, g := range excludes {
			if g.matchPath(path) {
				delete(found, path)
				break
			}
		}
	}
	return sortedKeys(found), nil
}

// absolute returns pat rooted at the matcher root, with forward slashes.
func (m *Matcher) absolute(pat string) string {
	if !filepath.IsAbs(pat) && !strings.HasPrefix(pat, "/") {
		pat = filepath.Join(m.root, pat)
	}
	return filepath.ToSlash(filepath.Clean(pat))
}

// find walks the pattern's literal base and returns the matching paths.
func (m *Matcher) find(g *glob) ([]string, error) {
	base := filepath.FromSlash(g.base)
	if g.isLiteral() {
		if _, err := m.fs.Stat(base); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		return []string{base}, nil
	}

	var out []string
	err := afero.Walk(m.fs, base, func(path string, _ fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if path == base {
			return nil
		}
		if g.matchPath(path) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// matchPath reports whether the native path matches g.
func (g *glob) matchPath(path string) bool {
	slashed := filepath.ToSlash(path)
	if g.isLiteral() {
		return slashed == g.raw
	}
	prefix := strings.TrimSuffix(g.base, "/") + "/"
	if !strings.HasPrefix(slashed, prefix) {
		return false
	}
	return g.match(strings.Split(strings.TrimPrefix(slashed, prefix), "/"))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
