package util

import (
	"path/filepath"
	"regexp"
	"strings"

	"debtwatch/src/config"
)

// ExclusionMatcher matches files and units against exclusion patterns
type ExclusionMatcher struct {
	filePatterns []string
	files        []string
	unitPatterns []*regexp.Regexp
}

// NewExclusionMatcher creates a new exclusion matcher from config
func NewExclusionMatcher(cfg config.ExclusionsConfig) *ExclusionMatcher {
	m := &ExclusionMatcher{
		filePatterns: cfg.FilePatterns,
		files:        cfg.Files,
	}

	for _, p := range cfg.UnitPatterns {
		if re, err := regexp.Compile(p); err == nil {
			m.unitPatterns = append(m.unitPatterns, re)
		}
	}

	return m
}

// Matches checks if a file or unit should be excluded
func (m *ExclusionMatcher) Matches(filePath, unitName string) bool {
	for _, f := range m.files {
		if filePath == f {
			return true
		}
	}

	for _, pattern := range m.filePatterns {
		if MatchGlob(pattern, filePath) {
			return true
		}
	}

	if unitName != "" {
		for _, re := range m.unitPatterns {
			if re.MatchString(unitName) {
				return true
			}
		}
	}

	return false
}

// MatchGlob matches a path against a glob pattern, including ** patterns
func MatchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		return matchDoubleGlob(pattern, path)
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}

// matchDoubleGlob handles ** patterns in globs
func matchDoubleGlob(pattern, path string) bool {
	parts := strings.Split(pattern, "**")

	// **/segment/** form: the segment appears anywhere in the path
	if len(parts) == 3 && parts[0] == "" && parts[2] == "" {
		mid := strings.Trim(parts[1], "/")
		return strings.HasPrefix(path, mid+"/") || strings.Contains(path, "/"+mid+"/")
	}
	if len(parts) != 2 {
		return false
	}

	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix == "" && suffix != "" {
		return strings.HasSuffix(path, suffix) || strings.Contains(path, "/"+suffix) || matchTail(suffix, path)
	}
	if suffix == "" && prefix != "" {
		return strings.HasPrefix(path, prefix) || strings.Contains(path, prefix+"/")
	}
	if prefix != "" && suffix != "" {
		return strings.Contains(path, prefix) && (strings.HasSuffix(path, suffix) || matchTail(suffix, path))
	}
	return true
}

// matchTail matches the final path segments against a glob suffix
func matchTail(suffix, path string) bool {
	segs := strings.Split(path, "/")
	want := len(strings.Split(suffix, "/"))
	if want > len(segs) {
		return false
	}
	tail := strings.Join(segs[len(segs)-want:], "/")
	matched, _ := filepath.Match(suffix, tail)
	return matched
}
