package importer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandLogPaths resolves the import arguments into a sorted list of
// distinct paths. Arguments without glob metacharacters are kept as is so
// a missing file is reported by ImportFile rather than silently skipped.
func ExpandLogPaths(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if _, ok := seen[pattern]; !ok {
				seen[pattern] = struct{}{}
				paths = append(paths, pattern)
			}
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
