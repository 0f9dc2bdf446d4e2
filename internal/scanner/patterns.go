package scanner

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// PatternMatcher handles pattern matching for file filtering.
type PatternMatcher struct{}

// NewPatternMatcher creates a new pattern matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{}
}

// ShouldIncludeFile determines if a file should be included based on patterns.
// Excludes take precedence over includes. With no include patterns every
// file that is not excluded is included.
func (pm *PatternMatcher) ShouldIncludeFile(
	relPath string,
	includePatterns []string,
	excludePatterns []string,
) bool {
	// Normalize path separators to forward slashes for consistent pattern matching
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range excludePatterns {
		if pm.matchesPattern(relPath, pattern) {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if pm.matchesPattern(relPath, pattern) {
			return true
		}
	}

	return false
}

// matchesPattern checks if a slash-separated relative path matches a glob pattern.
//
//   - "dir/" matches everything below dir
//   - "prefix**suffix" matches any path with that prefix and suffix
//   - a pattern without "/" is matched against the base name, so "*.log"
//     matches at any depth
//   - anything else is matched against the whole path with path.Match
func (pm *PatternMatcher) matchesPattern(relPath, pattern string) bool {
	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		return strings.HasPrefix(relPath+"/", pattern+"/") ||
			strings.Contains("/"+relPath+"/", "/"+pattern+"/")
	}

	if strings.Contains(pattern, "**") {
		return pm.matchesGlobPattern(relPath, pattern)
	}

	if !strings.Contains(pattern, "/") {
		match, err := path.Match(pattern, path.Base(relPath))
		return err == nil && match
	}

	match, err := path.Match(pattern, relPath)
	return err == nil && match
}

// matchesGlobPattern handles patterns with a single ** (recursive wildcard).
// A literal suffix must end the path, as in "**.csv". A suffix after "**/"
// must match whole trailing path segments, as in "**/*.tmp".
func (pm *PatternMatcher) matchesGlobPattern(relPath, pattern string) bool {
	parts := strings.Split(pattern, "**")
	if len(parts) != 2 {
		return false
	}

	prefix, suffix := parts[0], parts[1]
	if !strings.HasPrefix(relPath, prefix) {
		return false
	}
	if suffix == "" {
		return true
	}

	rest := strings.TrimPrefix(relPath, prefix)

	if !strings.HasPrefix(suffix, "/") {
		if !hasMeta(suffix) {
			return strings.HasSuffix(rest, suffix)
		}
		for i := range len(rest) {
			if match, err := path.Match(suffix, rest[i:]); err == nil && match {
				return true
			}
		}
		return false
	}

	suffix = strings.TrimPrefix(suffix, "/")
	if !hasMeta(suffix) {
		return rest == suffix || strings.HasSuffix(rest, "/"+suffix)
	}
	for {
		if match, err := path.Match(suffix, rest); err == nil && match {
			return true
		}
		i := strings.Index(rest, "/")
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
	}
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[\`)
}

// ValidatePatterns validates that the given patterns are syntactically correct.
func (pm *PatternMatcher) ValidatePatterns(patterns []string) []error {
	var errs []error

	for i, pattern := range patterns {
		if pattern == "" {
			errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: path.ErrBadPattern})
			continue
		}

		if strings.Count(pattern, "**") > 1 {
			errs = append(errs, &PatternError{
				Pattern: pattern,
				Index:   i,
				Err:     fmt.Errorf("only one ** is supported: %w", path.ErrBadPattern),
			})
			continue
		}

		check := strings.ReplaceAll(strings.TrimSuffix(pattern, "/"), "**", "*")
		if _, err := path.Match(check, "dummy"); err != nil {
			errs = append(errs, &PatternError{Pattern: pattern, Index: i, Err: err})
		}
	}

	return errs
}

// PatternError represents an error with a pattern.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern at index %d '%s': %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
