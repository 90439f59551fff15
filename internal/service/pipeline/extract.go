package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"codescrybe/internal/domain/models"
	domainllm "codescrybe/internal/domain/services/llm"
	"codescrybe/internal/service/llm"
	"codescrybe/internal/service/pipeline/chunker"
)

// tokenLimit caps the code volume per extraction request. Token
// counts are approximated at four characters per token; close enough
// for batching.
const tokenLimit = 6000

// Extractor turns code chunks into graph features by asking an LLM to
// annotate each chunk. Extraction is best effort: batches that fail
// produce warnings, and a run that yields nothing at all falls back
// to basic features so the repository still becomes chattable.
type Extractor struct {
	registry *llm.Registry
	model    string
	logger   *slog.Logger
}

// NewExtractor creates an extractor using the given model.
func NewExtractor(registry *llm.Registry, model string, logger *slog.Logger) *Extractor {
	return &Extractor{
		registry: registry,
		model:    model,
		logger:   logger,
	}
}

// extractedFeature is the JSON shape the model is asked to emit, one
// object per chunk.
type extractedFeature struct {
	File         string   `json:"file"`
	ChunkID      int      `json:"chunk_id"`
	Language     string   `json:"language"`
	Feature      string   `json:"feature"`
	Description  string   `json:"description"`
	Functions    []string `json:"functions"`
	Classes      []string `json:"classes"`
	APIs         []string `json:"apis"`
	Dependencies []string `json:"dependencies"`
	Inputs       []string `json:"inputs"`
	Outputs      []string `json:"outputs"`
	SideEffects  []string `json:"side_effects"`
	Requirements []string `json:"requirements"`
}

// Extract annotates chunks batch by batch. The progress callback is
// invoked after each batch with (processed, total). The returned
// warnings describe batches that failed; an empty feature list means
// the caller should fall back to BasicFeatures.
func (e *Extractor) Extract(ctx context.Context, chunks []chunker.Chunk, progress func(done, total int)) ([]models.GraphFeature, []string) {
	provider, err := e.registry.Resolve(e.model)
	if err != nil {
		return nil, []string{fmt.Sprintf("no provider for model %s, skipping AI extraction", e.model)}
	}

	// File -> global-context chunk, prepended to batches for context.
	globals := make(map[string]chunker.Chunk)
	for _, c := range chunks {
		if c.ChunkID == 0 {
			globals[c.File] = c
		}
	}

	batches := batchChunks(chunks, globals)
	e.logger.Info("created extraction batches", "batches", len(batches), "chunks", len(chunks))

	var features []models.GraphFeature
	var warnings []string

	for i, batch := range batches {
		if ctx.Err() != nil {
			warnings = append(warnings, "extraction cancelled")
			break
		}

		extracted, err := e.extractBatch(ctx, provider, batch, globals)
		if err != nil {
			e.logger.Error("batch extraction failed", "batch", i+1, "error", err)
			warnings = append(warnings, fmt.Sprintf("failed to process batch %d: %v", i+1, err))
		} else {
			features = append(features, extracted...)
		}

		if progress != nil {
			progress(i+1, len(batches))
		}
	}

	return features, warnings
}

// extractBatch sends one batch to the provider and parses the reply.
func (e *Extractor) extractBatch(ctx context.Context, provider domainllm.Provider, batch []chunker.Chunk, globals map[string]chunker.Chunk) ([]models.GraphFeature, error) {
	// Prepend the first file's global context when it is not already
	// part of the batch.
	if g, ok := globals[batch[0].File]; ok && !containsChunk(batch, g) {
		batch = append([]chunker.Chunk{g}, batch...)
	}

	resp, err := provider.GenerateResponse(ctx, &domainllm.GenerateRequest{
		Model: e.model,
		Messages: []domainllm.Message{
			{Role: "user", Content: buildExtractionPrompt(batch)},
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, err
	}

	var extracted []extractedFeature
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Text)), &extracted); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	features := make([]models.GraphFeature, 0, len(extracted))
	for _, x := range extracted {
		f := models.GraphFeature{
			File:         x.File,
			ChunkID:      x.ChunkID,
			Language:     x.Language,
			Feature:      x.Feature,
			Description:  x.Description,
			Functions:    x.Functions,
			Classes:      x.Classes,
			APIs:         x.APIs,
			Dependencies: x.Dependencies,
			Inputs:       x.Inputs,
			Outputs:      x.Outputs,
			SideEffects:  x.SideEffects,
			Requirements: x.Requirements,
		}
		// The model echoes file and chunk_id; join the original code
		// back on so retrieval can quote it.
		for _, c := range batch {
			if c.File == x.File && c.ChunkID == x.ChunkID {
				f.Code = c.Code
				break
			}
		}
		features = append(features, f)
	}
	return features, nil
}

// batchChunks groups non-global chunks so each batch, together with
// its file's global context, stays under the token limit.
func batchChunks(chunks []chunker.Chunk, globals map[string]chunker.Chunk) [][]chunker.Chunk {
	var batches [][]chunker.Chunk
	var current []chunker.Chunk

	for _, chunk := range chunks {
		if chunk.ChunkID == 0 {
			continue
		}

		test := append(append([]chunker.Chunk{}, current...), chunk)
		size := 0
		for _, c := range test {
			size += estimateTokens(c.Code)
		}
		if g, ok := globals[chunk.File]; ok && !containsChunk(test, g) {
			size += estimateTokens(g.Code)
		}

		if size > tokenLimit && len(current) > 0 {
			batches = append(batches, current)
			current = []chunker.Chunk{chunk}
		} else {
			current = append(current, chunk)
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func containsChunk(chunks []chunker.Chunk, target chunker.Chunk) bool {
	for _, c := range chunks {
		if c.File == target.File && c.ChunkID == target.ChunkID {
			return true
		}
	}
	return false
}

func estimateTokens(text string) int {
	return len(text) / 4
}

// buildExtractionPrompt formats a batch into the annotation prompt.
func buildExtractionPrompt(batch []chunker.Chunk) string {
	var formatted []string
	for _, c := range batch {
		formatted = append(formatted, fmt.Sprintf(
			"---\nFile: %s\nChunk ID: %d\nLanguage: %s\n\n%s\n---",
			c.File, c.ChunkID, c.Language, c.Code,
		))
	}

	return fmt.Sprintf(`You are an expert software analyst. For each code segment, extract the following in structured JSON format, one object per segment, as a JSON array:

[
  {
    "file": "...",
    "chunk_id": 0,
    "language": "...",
    "feature": "short name of what this code does",
    "description": "one or two sentences",
    "functions": ["function names defined here"],
    "classes": ["class names defined here"],
    "apis": ["external APIs or system calls used"],
    "dependencies": ["libraries, modules, or files this depends on"],
    "inputs": ["..."],
    "outputs": ["..."],
    "side_effects": ["..."],
    "requirements": ["..."]
  }
]

Return only the JSON array.

Code:
%s`, strings.Join(formatted, "\n\n"))
}

var fenceEdgeRe = regexp.MustCompile("(?i)^```(?:json)?\\s*|\\s*```$")

// stripCodeFences removes a wrapping markdown fence from a model
// reply.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = fenceEdgeRe.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// BasicFeatures converts raw chunks into minimal features, used when
// AI extraction is unavailable or produced nothing.
func BasicFeatures(chunks []chunker.Chunk) []models.GraphFeature {
	features := make([]models.GraphFeature, 0, len(chunks))
	for _, c := range chunks {
		features = append(features, models.GraphFeature{
			File:        c.File,
			ChunkID:     c.ChunkID,
			Language:    c.Language,
			Feature:     fmt.Sprintf("Code Block %d", c.ChunkID),
			Description: fmt.Sprintf("Code chunk from %s", filepath.Base(c.File)),
			Code:        c.Code,
		})
	}
	return features
}
