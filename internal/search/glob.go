// SPDX-License-Identifier: MPL-2.0

package search

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/pattern"
)

const globStar = "**"

type (
	// glob is a compiled slash-separated pattern.
	glob struct {
		raw      string
		base     string
		segments []segment
	}

	// segment matches one path element, or any number of them for "**".
	segment struct {
		star bool
		re   *regexp.Regexp
	}
)

// compileGlob compiles an absolute slash-separated pattern. base is the
// longest leading directory without wildcards.
func compileGlob(pat string) (*glob, error) {
	parts := strings.Split(pat, "/")

	literal := len(parts)
	for i, p := range parts {
		if hasMeta(p) {
			literal = i
			break
		}
	}

	g := &glob{raw: pat, base: strings.Join(parts[:literal], "/")}
	if literal == len(parts) {
		return g, nil
	}
	if g.base == "" {
		g.base = "/"
	}

	for _, p := range parts[literal:] {
		if p == globStar {
			// Consecutive globstars are equivalent to one.
			if n := len(g.segments); n > 0 && g.segments[n-1].star {
				continue
			}
			g.segments = append(g.segments, segment{star: true})
			continue
		}
		expr, err := pattern.Regexp(p, pattern.Filenames|pattern.EntireString)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pat, err)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pat, err)
		}
		g.segments = append(g.segments, segment{re: re})
	}
	return g, nil
}

// isLiteral reports whether the pattern names exactly one path.
func (g *glob) isLiteral() bool { return len(g.segments) == 0 }

// match reports whether rel, relative to g.base and split on "/", matches.
func (g *glob) match(rel []string) bool {
	return matchSegments(g.segments, rel)
}

func matchSegments(segs []segment, parts []string) bool {
	for len(segs) > 0 {
		if segs[0].star {
			rest := segs[1:]
			for i := 0; i <= len(parts); i++ {
				if matchSegments(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 || !segs[0].re.MatchString(parts[0]) {
			return false
		}
		segs, parts = segs[1:], parts[1:]
	}
	return len(parts) == 0
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
