package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"

	"codescrybe/internal/service/pipeline/chunker"
)

// DetectPrimaryLanguage walks a checkout and returns the registry
// language with the most files, or "Unknown" when nothing matches.
func DetectPrimaryLanguage(root string, registry *chunker.Registry) string {
	counts := make(map[string]int)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if lang, ok := registry.LanguageFor(ext); ok {
			counts[lang.Name]++
		}
		return nil
	})

	best := "Unknown"
	bestCount := 0
	for lang, n := range counts {
		if n > bestCount || (n == bestCount && bestCount > 0 && lang < best) {
			best = lang
			bestCount = n
		}
	}
	return best
}
