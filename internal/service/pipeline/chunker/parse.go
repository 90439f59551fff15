package chunker

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Parser walks a checkout and chunks every supported source file.
type Parser struct {
	registry *Registry
	logger   *slog.Logger
}

// NewParser creates a parser over the embedded language registry.
func NewParser(logger *slog.Logger) (*Parser, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	return &Parser{registry: registry, logger: logger}, nil
}

// Registry exposes the language registry for detection.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// ParseFiles walks root and returns the chunks of every file whose
// language has a chunking strategy. File paths in the result are
// relative to root. Unreadable files are logged and skipped rather
// than failing the run.
func (p *Parser) ParseFiles(root string) ([]Chunk, error) {
	var chunks []Chunk

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !p.registry.Chunkable(ext) {
			return nil
		}

		lang, _ := p.registry.LanguageFor(ext)
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		chunks = append(chunks, p.chunkFile(rel, lang, string(data))...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk repository: %w", err)
	}

	return chunks, nil
}

func (p *Parser) chunkFile(file string, lang *Language, code string) []Chunk {
	switch lang.Strategy {
	case StrategySAS, StrategyCOBOL:
		var blocks []Block
		if lang.Strategy == StrategySAS {
			blocks = ChunkSAS(code)
		} else {
			blocks = ChunkCOBOL(code)
		}
		chunks := make([]Chunk, 0, len(blocks))
		for i, b := range blocks {
			chunks = append(chunks, Chunk{
				File:     file,
				ChunkID:  i,
				Language: lang.Name,
				Type:     b.Type,
				Name:     b.Name,
				Code:     b.Code,
			})
		}
		return chunks

	case StrategyRegex:
		parts := ChunkRegex(code)
		chunks := make([]Chunk, 0, len(parts))
		for i, part := range parts {
			chunks = append(chunks, Chunk{
				File:     file,
				ChunkID:  i,
				Language: lang.Name,
				Code:     part,
			})
		}
		return chunks

	default:
		return nil
	}
}
