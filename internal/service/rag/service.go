package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
	domainllm "codescrybe/internal/domain/services/llm"
	"codescrybe/internal/service/llm"
)

const (
	searchLimit   = 20
	fallbackLimit = 10

	truncateChars = 800
	truncateLines = 15
)

// Answer is a generated chat reply plus the metadata stored alongside
// the assistant message.
type Answer struct {
	Text     string
	Metadata map[string]any
}

// Service answers questions about an analyzed repository by retrieving
// matching features from the store and asking an LLM to explain them.
type Service struct {
	features repositories.FeatureStore
	registry *llm.Registry
	model    string
	logger   *slog.Logger
}

// NewService creates the answer generator.
func NewService(features repositories.FeatureStore, registry *llm.Registry, model string, logger *slog.Logger) *Service {
	return &Service{
		features: features,
		registry: registry,
		model:    model,
		logger:   logger,
	}
}

// Answer generates a reply to a question about the repository. Missing
// retrieval results and LLM failures degrade to helpful responses
// rather than errors; an error return means nothing usable could be
// produced at all.
func (s *Service) Answer(ctx context.Context, repo *models.Repository, question string) (*Answer, error) {
	start := time.Now()

	if IsCasual(question) {
		return &Answer{
			Text: CasualReply(question, repo.Name),
			Metadata: map[string]any{
				"repository":       repo.Name,
				"interaction_type": "casual",
				"execution_time":   elapsed(start),
			},
		}, nil
	}

	results := s.retrieve(ctx, repo.ID, question)
	if len(results) == 0 {
		return &Answer{
			Text: noMatchesReply(repo.Name),
			Metadata: map[string]any{
				"repository":     repo.Name,
				"files_analyzed": repo.FilesAnalyzed,
				"execution_time": elapsed(start),
				"results_found":  0,
				"suggestion":     "Try broader search terms",
			},
		}, nil
	}

	contextData := assembleContext(results, repo.Language)

	provider, err := s.registry.Resolve(s.model)
	if err != nil {
		return nil, fmt.Errorf("resolve provider for %s: %w", s.model, err)
	}

	temp := 0.4
	resp, err := provider.GenerateResponse(ctx, &domainllm.GenerateRequest{
		Model: s.model,
		Messages: []domainllm.Message{
			{Role: "user", Content: buildAnswerPrompt(repo, question, contextData)},
		},
		MaxTokens:   2500,
		Temperature: &temp,
	})
	if err != nil {
		s.logger.Error("answer generation failed", "repository_id", repo.ID, "error", err)
		return &Answer{
			Text: fmt.Sprintf(
				"⚠️ **Analysis Error**\n\nI found %d relevant code elements in **%s**, but encountered an issue generating the detailed analysis. Please try again.",
				len(results), repo.Name,
			),
			Metadata: map[string]any{
				"repository":     repo.Name,
				"error":          err.Error(),
				"results_found":  len(results),
				"execution_time": elapsed(start),
			},
		}, nil
	}

	confidence := min(0.95, 0.5+float64(len(results))*0.03+float64(len(contextData))*0.02)

	return &Answer{
		Text: Decorate(resp.Text, question, len(results), confidence),
		Metadata: map[string]any{
			"repository":     repo.Name,
			"files_analyzed": repo.FilesAnalyzed,
			"execution_time": elapsed(start),
			"confidence":     confidence,
			"results_found":  len(results),
			"model":          resp.Model,
		},
	}, nil
}

// retrieve looks up features by keyword, falling back to a sample of
// the stored set when the keywords match nothing. Store errors are
// logged and treated as empty results.
func (s *Service) retrieve(ctx context.Context, repositoryID, question string) []models.GraphFeature {
	terms := ExtractSearchTerms(question)

	if len(terms) > 0 {
		results, err := s.features.Search(ctx, repositoryID, terms, searchLimit)
		if err != nil {
			s.logger.Error("feature search failed", "repository_id", repositoryID, "error", err)
		}
		if len(results) > 0 {
			return results
		}
	}

	results, err := s.features.Sample(ctx, repositoryID, fallbackLimit)
	if err != nil {
		s.logger.Error("feature sample failed", "repository_id", repositoryID, "error", err)
		return nil
	}
	return results
}

// assembleContext converts retrieved features into the compact JSON
// items the answer prompt embeds.
func assembleContext(results []models.GraphFeature, defaultLanguage string) []map[string]any {
	items := make([]map[string]any, 0, len(results))
	for _, f := range results {
		language := f.Language
		if language == "" {
			language = defaultLanguage
		}

		kind := "feature"
		if len(f.Functions) > 0 {
			kind = "function"
		} else if len(f.Classes) > 0 {
			kind = "class"
		}

		item := map[string]any{
			"feature_name": f.Feature,
			"description":  f.Description,
			"language":     language,
			"file":         f.File,
			"type":         kind,
		}
		if f.Code != "" {
			item["code_snippet"] = truncateCode(f.Code)
		}
		for key, values := range map[string][]string{
			"functions":    f.Functions,
			"classes":      f.Classes,
			"apis":         f.APIs,
			"dependencies": f.Dependencies,
			"inputs":       f.Inputs,
			"outputs":      f.Outputs,
		} {
			if len(values) > 0 {
				item[key] = values
			}
		}
		items = append(items, item)
	}
	return items
}

// truncateCode shortens long snippets for the prompt, keeping whole
// leading lines when the snippet is line-oriented.
func truncateCode(code string) string {
	if len(code) <= truncateChars {
		return code
	}
	lines := strings.Split(code, "\n")
	if len(lines) > 20 {
		return strings.Join(lines[:truncateLines], "\n") +
			fmt.Sprintf("\n... (%d more lines)", len(lines)-truncateLines)
	}
	return code[:truncateChars] + "..."
}

func buildAnswerPrompt(repo *models.Repository, question string, contextData []map[string]any) string {
	contextJSON, err := json.MarshalIndent(contextData, "", "  ")
	if err != nil {
		contextJSON = []byte("[]")
	}

	return fmt.Sprintf(`You are an expert software analyst and code documentation assistant. Your role is to help developers understand codebases by providing clear, accurate, and actionable insights.

REPOSITORY CONTEXT:
- Name: %s
- Language: %s
- Description: %s
- Files Analyzed: %d

USER QUESTION: "%s"

RELEVANT CODE ANALYSIS DATA:
%s

INSTRUCTIONS:
1. Answer the user's question directly and comprehensively.
2. Reference actual function names, class names, and file locations.
3. Explain what the code does and how it fits into the larger system.
4. Include actionable insights and usage examples when relevant.
5. Use markdown headings and bullet points for readability.
6. Never say "no data available"; always provide value from what was found.

RESPONSE FORMAT:
- Start with a clear, direct answer
- Include code snippets when helpful
- Mention specific files and locations
- End with practical next steps or related suggestions`,
		repo.Name, repo.Language, repo.Description, repo.FilesAnalyzed,
		question, contextJSON)
}

func noMatchesReply(repoName string) string {
	return fmt.Sprintf(`🔍 **No Direct Matches Found**

I searched through the **%s** repository but couldn't find specific code elements matching your query. This could mean:

- The feature you're looking for might use different terminology
- The code might not be indexed yet
- Try rephrasing your question with different keywords

💡 **Tip**: Try asking about general concepts like 'show me the main functions' or 'what classes are available'`, repoName)
}

func elapsed(start time.Time) string {
	return fmt.Sprintf("%.2fs", time.Since(start).Seconds())
}
