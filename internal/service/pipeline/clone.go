package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"codescrybe/internal/domain"
)

// Cloner validates GitHub repository URLs and manages shallow
// checkouts under the clone directory.
type Cloner struct {
	cloneDir  string
	githubAPI string
	client    *http.Client
	logger    *slog.Logger
}

// NewCloner creates a cloner that checks out under cloneDir and
// validates against the given GitHub API base URL.
func NewCloner(cloneDir, githubAPI string, logger *slog.Logger) *Cloner {
	return &Cloner{
		cloneDir:  cloneDir,
		githubAPI: githubAPI,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// RepoBaseName extracts the repository name from a clone URL.
func RepoBaseName(repoURL string) string {
	repoURL = strings.TrimSuffix(repoURL, ".git")
	// scp-style remotes: git@github.com:owner/repo
	if at := strings.Index(repoURL, "@"); at >= 0 && strings.Contains(repoURL, ":") {
		repoURL = repoURL[strings.Index(repoURL, ":")+1:]
	}
	return filepath.Base(repoURL)
}

// Validate checks that the URL points at an existing public GitHub
// repository by asking the GitHub API. Malformed URLs and missing
// repositories come back as validation errors; transport failures are
// passed through so the caller can distinguish "bad input" from
// "GitHub is down".
func (c *Cloner) Validate(ctx context.Context, repoURL string) error {
	parsed, err := url.Parse(repoURL)
	if err != nil || !strings.Contains(parsed.Host, "github.com") {
		return &domain.ValidationError{Message: "URL must point to a GitHub repository"}
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return &domain.ValidationError{Message: "URL must name a repository as github.com/<owner>/<repo>"}
	}
	owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")

	apiURL := fmt.Sprintf("%s/repos/%s/%s", c.githubAPI, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("build validation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reach GitHub API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.ValidationError{
			Message: fmt.Sprintf("repository %s/%s not found on GitHub", owner, repo),
		}
	}
	return nil
}

// Clone makes a fresh shallow checkout of the repository and returns
// its path. The directory name carries a random suffix so concurrent
// analyses of the same repository never share a checkout.
func (c *Cloner) Clone(ctx context.Context, repoURL string) (string, error) {
	target := filepath.Join(c.cloneDir, RepoBaseName(repoURL)+"-"+uuid.NewString()[:8])

	if err := os.MkdirAll(c.cloneDir, 0o755); err != nil {
		return "", fmt.Errorf("create clone directory: %w", err)
	}

	c.logger.Info("cloning repository", "url", repoURL, "target", target)

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", repoURL, target)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return target, nil
}

// Cleanup removes a checkout. Failures are logged, not fatal: a
// leftover directory costs disk space, not correctness.
func (c *Cloner) Cleanup(path string) bool {
	if path == "" {
		return true
	}
	if err := os.RemoveAll(path); err != nil {
		c.logger.Warn("failed to clean up checkout", "path", path, "error", err)
		return false
	}
	c.logger.Info("cleaned up checkout", "path", path)
	return true
}
