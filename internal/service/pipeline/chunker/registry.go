// Package chunker splits legacy source files into analyzable chunks.
// Chunking is deliberately lexical: the repositories this system
// targets (COBOL, SAS, old C) rarely parse cleanly with modern
// grammars, and the feature extractor only needs coherent regions,
// not an exact AST.
package chunker

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var languagesYAML []byte

// Strategy selects the splitting algorithm for a language.
type Strategy string

const (
	StrategyRegex Strategy = "regex"
	StrategySAS   Strategy = "sas"
	StrategyCOBOL Strategy = "cobol"
	// StrategyNone marks detection-only languages.
	StrategyNone Strategy = ""
)

// Language is one entry of the embedded registry.
type Language struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
	Strategy   Strategy `yaml:"strategy"`
}

// Registry maps file extensions to languages and chunking strategies.
type Registry struct {
	byExt map[string]*Language
}

// NewRegistry loads the embedded language registry.
func NewRegistry() (*Registry, error) {
	var file struct {
		Languages []Language `yaml:"languages"`
	}
	if err := yaml.Unmarshal(languagesYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal language registry: %w", err)
	}

	r := &Registry{byExt: make(map[string]*Language)}
	for i := range file.Languages {
		lang := &file.Languages[i]
		for _, ext := range lang.Extensions {
			r.byExt[strings.ToLower(ext)] = lang
		}
	}
	return r, nil
}

// LanguageFor returns the language registered for a file extension.
func (r *Registry) LanguageFor(ext string) (*Language, bool) {
	lang, ok := r.byExt[strings.ToLower(ext)]
	return lang, ok
}

// Chunkable reports whether files with the extension get chunked, as
// opposed to only counted during language detection.
func (r *Registry) Chunkable(ext string) bool {
	lang, ok := r.LanguageFor(ext)
	return ok && lang.Strategy != StrategyNone
}
