// Package ignore filters walked paths against ignore patterns, the way
// source trees carry .gitignore files. Lantern reads a .lanternignore
// file at each walk root and merges it with configured patterns.
package ignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-root ignore file the walker looks for.
const IgnoreFileName = ".lanternignore"

// Matcher holds compiled ignore patterns. Patterns follow a small
// subset of gitignore syntax: glob on the entry name, a leading slash
// anchors to the root-relative path, a trailing slash matches
// directories only, and a leading ! re-includes matches.
type Matcher struct {
	rules []rule
}

type rule struct {
	pattern  string
	negation bool
	dirOnly  bool
	anchored bool
}

// New compiles the given patterns. Blank lines and # comments are
// dropped.
func New(patterns ...string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		m.add(p)
	}
	return m
}

// Load reads the ignore file under root, if present, and appends the
// extra configured patterns. A missing file yields a matcher with only
// the extras.
func Load(root string, extra ...string) (*Matcher, error) {
	m := &Matcher{}

	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			m.add(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	for _, p := range extra {
		m.add(p)
	}
	return m, nil
}

func (m *Matcher) add(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}

	r := rule{}
	if strings.HasPrefix(pattern, "!") {
		r.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		r.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		r.anchored = true
	}
	r.pattern = pattern

	if r.pattern != "" {
		m.rules = append(m.rules, r)
	}
}

// Match reports whether the root-relative path rel (slash-separated)
// is ignored. Later rules win, so a negation can re-include an earlier
// match.
func (m *Matcher) Match(rel string, isDir bool) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	name := path.Base(rel)

	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		target := name
		if r.anchored {
			target = rel
		}
		ok, err := path.Match(r.pattern, target)
		if err != nil || !ok {
			continue
		}
		ignored = !r.negation
	}
	return ignored
}

// Empty reports whether the matcher has no rules, letting callers skip
// the per-entry check entirely.
func (m *Matcher) Empty() bool {
	return len(m.rules) == 0
}
