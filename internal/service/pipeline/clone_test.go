package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"codescrybe/internal/domain"
)

func TestRepoBaseName(t *testing.T) {
	urls := []string{
		"https://github.com/acme/legacy-bank.git",
		"https://github.com/acme/legacy-bank",
		"git@github.com:acme/legacy-bank.git",
	}
	for _, u := range urls {
		if got := RepoBaseName(u); got != "legacy-bank" {
			t.Errorf("RepoBaseName(%q) = %q, want %q", u, got, "legacy-bank")
		}
	}
}

func TestCloner_Validate(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/real" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer api.Close()

	cloner := NewCloner(t.TempDir(), api.URL, discardLogger())
	ctx := context.Background()

	if err := cloner.Validate(ctx, "https://github.com/acme/real"); err != nil {
		t.Errorf("valid repository rejected: %v", err)
	}

	err := cloner.Validate(ctx, "https://github.com/acme/ghost")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing repository should be a validation error, got %v", err)
	}

	for _, bad := range []string{
		"https://gitlab.com/acme/real",
		"https://github.com/acme",
		"not a url at all",
	} {
		if err := cloner.Validate(ctx, bad); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Validate(%q) = %v, want validation error", bad, err)
		}
	}
}
