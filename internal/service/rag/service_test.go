package rag

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"codescrybe/internal/domain/models"
	domainllm "codescrybe/internal/domain/services/llm"
	"codescrybe/internal/service/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFeatureStore struct {
	searchResults []models.GraphFeature
	sampleResults []models.GraphFeature
	searchCalls   int
	sampleCalls   int
}

func (s *stubFeatureStore) ReplaceAll(ctx context.Context, repositoryID string, features []models.GraphFeature) error {
	return nil
}

func (s *stubFeatureStore) Search(ctx context.Context, repositoryID string, terms []string, limit int) ([]models.GraphFeature, error) {
	s.searchCalls++
	return s.searchResults, nil
}

func (s *stubFeatureStore) Sample(ctx context.Context, repositoryID string, limit int) ([]models.GraphFeature, error) {
	s.sampleCalls++
	return s.sampleResults, nil
}

func (s *stubFeatureStore) Insights(ctx context.Context, repositoryID string) (*models.GraphInsights, error) {
	return &models.GraphInsights{}, nil
}

type stubProvider struct {
	reply string
	fail  bool
	calls int
}

func (s *stubProvider) Name() string                { return "stub" }
func (s *stubProvider) SupportsModel(m string) bool { return true }

func (s *stubProvider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	s.calls++
	if s.fail {
		return nil, context.DeadlineExceeded
	}
	return &domainllm.GenerateResponse{Text: s.reply, Model: req.Model}, nil
}

func testRepo() *models.Repository {
	return &models.Repository{
		ID:            "repo-1",
		Name:          "legacy-bank",
		Language:      "COBOL",
		FilesAnalyzed: 12,
		Status:        models.StatusAnalyzed,
	}
}

func newTestService(store *stubFeatureStore, provider *stubProvider) *Service {
	return NewService(store, llm.NewRegistry(provider), "test-model", discardLogger())
}

func TestService_CasualShortCircuit(t *testing.T) {
	store := &stubFeatureStore{}
	provider := &stubProvider{}
	svc := newTestService(store, provider)

	answer, err := svc.Answer(context.Background(), testRepo(), "hello")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	if provider.calls != 0 {
		t.Error("greeting should not reach the LLM")
	}
	if store.searchCalls != 0 || store.sampleCalls != 0 {
		t.Error("greeting should not hit the feature store")
	}
	if answer.Metadata["interaction_type"] != "casual" {
		t.Errorf("metadata = %v", answer.Metadata)
	}
	if !strings.Contains(answer.Text, "legacy-bank") {
		t.Errorf("greeting should mention the repository: %q", answer.Text)
	}
}

func TestService_AnswersFromRetrievedFeatures(t *testing.T) {
	store := &stubFeatureStore{
		searchResults: []models.GraphFeature{
			{
				Feature:     "Interest Calculation",
				Description: "Computes monthly interest",
				File:        "src/interest.cbl",
				Functions:   []string{"CALC-INTEREST"},
				Code:        "CALC-INTEREST.\n    COMPUTE RESULT = P * R.",
			},
		},
	}
	provider := &stubProvider{reply: "The CALC-INTEREST paragraph computes monthly interest."}
	svc := newTestService(store, provider)

	answer, err := svc.Answer(context.Background(), testRepo(), "What functions handle interest?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	if !strings.HasPrefix(answer.Text, "🔧 **Analysis Results**") {
		t.Errorf("function question should get the function icon: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "Found 1 relevant code elements") {
		t.Errorf("missing query-info footer: %q", answer.Text)
	}
	if answer.Metadata["results_found"] != 1 {
		t.Errorf("results_found = %v", answer.Metadata["results_found"])
	}
	if store.sampleCalls != 0 {
		t.Error("sample fallback should not run when search matched")
	}
}

func TestService_SampleFallbackWhenSearchEmpty(t *testing.T) {
	store := &stubFeatureStore{
		sampleResults: []models.GraphFeature{
			{Feature: "Main Loop", Description: "Program entry", File: "main.cbl"},
		},
	}
	provider := &stubProvider{reply: "This repository centers on a main processing loop."}
	svc := newTestService(store, provider)

	answer, err := svc.Answer(context.Background(), testRepo(), "Explain the settlement workflow")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	if store.searchCalls != 1 || store.sampleCalls != 1 {
		t.Errorf("expected search then sample, got search=%d sample=%d", store.searchCalls, store.sampleCalls)
	}
	if answer.Metadata["results_found"] != 1 {
		t.Errorf("results_found = %v", answer.Metadata["results_found"])
	}
}

func TestService_NoMatchesAnywhere(t *testing.T) {
	store := &stubFeatureStore{}
	provider := &stubProvider{}
	svc := newTestService(store, provider)

	answer, err := svc.Answer(context.Background(), testRepo(), "Explain the settlement workflow")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}

	if provider.calls != 0 {
		t.Error("no results should skip the LLM call")
	}
	if !strings.Contains(answer.Text, "No Direct Matches Found") {
		t.Errorf("unexpected response: %q", answer.Text)
	}
	if answer.Metadata["results_found"] != 0 {
		t.Errorf("results_found = %v", answer.Metadata["results_found"])
	}
}

func TestService_LLMFailureDegrades(t *testing.T) {
	store := &stubFeatureStore{
		searchResults: []models.GraphFeature{{Feature: "Main Loop", File: "main.cbl"}},
	}
	provider := &stubProvider{fail: true}
	svc := newTestService(store, provider)

	answer, err := svc.Answer(context.Background(), testRepo(), "Explain the settlement workflow")
	if err != nil {
		t.Fatalf("degraded answer should not be an error: %v", err)
	}
	if !strings.Contains(answer.Text, "Analysis Error") {
		t.Errorf("unexpected response: %q", answer.Text)
	}
	if answer.Metadata["error"] == nil {
		t.Error("metadata should record the failure")
	}
}

func TestTruncateCode(t *testing.T) {
	short := "line one\nline two"
	if got := truncateCode(short); got != short {
		t.Errorf("short code should pass through, got %q", got)
	}

	lines := make([]string, 35)
	for i := range lines {
		lines[i] = strings.Repeat("x", 30)
	}
	long := strings.Join(lines, "\n")
	got := truncateCode(long)
	if !strings.HasSuffix(got, "... (20 more lines)") {
		t.Errorf("line-oriented truncation missing marker: %q", got)
	}
	if strings.Count(got, "\n") != 15 {
		t.Errorf("expected 15 kept lines plus marker, got %d newlines", strings.Count(got, "\n"))
	}

	oneLine := strings.Repeat("y", 1000)
	got = truncateCode(oneLine)
	if len(got) != truncateChars+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("character truncation wrong: len=%d", len(got))
	}
}

func TestDecorate_Icons(t *testing.T) {
	tests := []struct {
		question string
		icon     string
	}{
		{"what functions are defined?", "🔧"},
		{"show me the class hierarchy", "📦"},
		{"how is the file structure organized?", "📁"},
		{"which api endpoints exist?", "🌐"},
		{"is there a bug in the parser?", "🐛"},
		{"what dependencies are imported?", "🔗"},
		{"summarize the repository", "💡"},
	}
	for _, tt := range tests {
		got := Decorate("body", tt.question, 0, 0)
		if !strings.HasPrefix(got, tt.icon) {
			t.Errorf("Decorate(%q) starts with %q, want icon %q", tt.question, got[:4], tt.icon)
		}
	}
}
