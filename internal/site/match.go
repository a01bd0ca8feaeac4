package site

import (
	"path"
	"path/filepath"
	"strings"
)

// Matcher selects pages by slash-separated path relative to the doc root.
// Patterns without a slash match the base name; "dir/**" matches everything below dir.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher builds a Matcher. Validation of the patterns happens in config.Validate.
func NewMatcher(include, exclude []string) Matcher {
	return Matcher{include: include, exclude: exclude}
}

// Match reports whether the page at rel should be refactored.
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	return !matchAny(m.exclude, rel) && matchAny(m.include, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if matchPattern(p, rel) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, rel string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return rel == prefix || strings.HasPrefix(rel, prefix+"/")
	}
	target := rel
	if !strings.Contains(pattern, "/") {
		target = path.Base(rel)
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}
