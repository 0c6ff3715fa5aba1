package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// YAMLFiles returns the .yaml and .yml files directly inside dir, in
// directory order. Subdirectories are ignored.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns absolute-or-relative paths joined onto dir, or a non-nil error.
func YAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
