package watch

import (
	"path/filepath"
)

// NameFilter accepts paths whose base name matches one of the glob patterns.
// An empty filter accepts everything.
type NameFilter []string

// Matches reports whether path passes the filter.
func (f NameFilter) Matches(path string) bool {
	if len(f) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range f {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
