package benchmark

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Discover walks root recursively and returns every regular file whose
// name matches the harness output pattern *benchmarkData*.json, in
// directory-tree order. A missing or empty root yields an empty slice;
// absence of benchmark output is a normal condition, not an error.
func Discover(root string) []string {
	var files []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		if matchesDataFile(d.Name()) {
			files = append(files, path)
		}

		return nil
	})

	return files
}

// matchesDataFile reports whether name matches *benchmarkData*.json.
func matchesDataFile(name string) bool {
	return strings.Contains(name, "benchmarkData") &&
		strings.HasSuffix(name, ".json")
}
