package rag

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractSearchTerms(t *testing.T) {
	tests := []struct {
		question string
		want     []string
	}{
		{
			question: "Tell me about the payment processing code",
			want:     []string{"payment", "processing"},
		},
		{
			question: "What does CalculateInterest do?",
			want:     []string{"calculateinterest"},
		},
		{
			question: "How are errors handled?",
			want:     []string{"errors", "handled"},
		},
		{
			question: "the a an is", // all stopwords
			want:     nil,
		},
	}
	for _, tt := range tests {
		got := ExtractSearchTerms(tt.question)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractSearchTerms(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestExtractSearchTerms_CapsAtFive(t *testing.T) {
	got := ExtractSearchTerms("alpha bravo charlie delta echo foxtrot golf")
	if len(got) != 5 {
		t.Fatalf("got %d terms, want 5: %v", len(got), got)
	}
	if got[0] != "alpha" || got[4] != "echo" {
		t.Errorf("terms should keep question order: %v", got)
	}
}

func TestIsCasual(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"hi", true},
		{"Hello there", true},
		{"thanks!", true},
		{"goodbye", true},
		{"hi, how does the parser work?", false}, // too long for small talk
		{"hit the database", false},              // "hi" only matches on word boundary
		{"what functions exist?", false},
	}
	for _, tt := range tests {
		if got := IsCasual(tt.question); got != tt.want {
			t.Errorf("IsCasual(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestCasualReply(t *testing.T) {
	reply := CasualReply("hello", "legacy-bank")
	if !strings.Contains(reply, "legacy-bank") {
		t.Errorf("greeting should mention the repository: %q", reply)
	}
	if reply != CasualReply("hello", "legacy-bank") {
		t.Error("same greeting should get a stable reply")
	}

	thanks := CasualReply("thanks", "legacy-bank")
	if strings.Contains(thanks, "legacy-bank") {
		t.Errorf("thanks reply should not name the repository: %q", thanks)
	}
}
