package sourcehost

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

var _ Host = (*GitHubHost)(nil)

// DefaultTimeout bounds individual GitHub API requests.
const DefaultTimeout = 30 * time.Second

// GitHubBaseURL is the permalink base for github.com repositories.
const GitHubBaseURL = "https://github.com"

// GitHubHost reads repositories through the GitHub API.
type GitHubHost struct {
	gh      *gh.Client
	baseURL string
}

// NewGitHubHost creates a host authenticated with a static token.
// Works for both PAT and OAuth access tokens; an empty token yields
// an unauthenticated client limited to public repositories.
func NewGitHubHost(ctx context.Context, token string) *GitHubHost {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = DefaultTimeout

	return &GitHubHost{
		gh:      gh.NewClient(httpClient),
		baseURL: GitHubBaseURL,
	}
}

// NewGitHubHostWithClient creates a host from a preconfigured
// go-github client. Used by tests against a stub server.
func NewGitHubHostWithClient(client *gh.Client) *GitHubHost {
	return &GitHubHost{gh: client, baseURL: GitHubBaseURL}
}

func (h *GitHubHost) BaseURL() string {
	return h.baseURL
}

// splitRepo splits "owner/name" into its parts.
func splitRepo(repo string) (string, string, error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q (want owner/name)", ErrInvalidRepo, repo)
	}
	return parts[0], parts[1], nil
}

func (h *GitHubHost) ResolveRevision(ctx context.Context, repo, revision string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	if revision == "" {
		repository, _, err := h.gh.Repositories.Get(ctx, owner, name)
		if err != nil {
			return "", fmt.Errorf("get repository: %w", err)
		}
		revision = repository.GetDefaultBranch()
	}

	commit, _, err := h.gh.Repositories.GetCommit(ctx, owner, name, revision, nil)
	if err != nil {
		return "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	return commit.GetSHA(), nil
}

func (h *GitHubHost) ListTree(ctx context.Context, repo, revision string) ([]FileEntry, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	sha := revision
	if sha == "" {
		sha, err = h.ResolveRevision(ctx, repo, "")
		if err != nil {
			return nil, err
		}
	}

	tree, _, err := h.gh.Git.GetTree(ctx, owner, name, sha, true)
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}

	entries := make([]FileEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		entries = append(entries, FileEntry{
			Path: entry.GetPath(),
			Size: int64(entry.GetSize()),
			SHA:  entry.GetSHA(),
		})
	}

	return entries, nil
}

func (h *GitHubHost) GetFileContent(ctx context.Context, repo, path, revision string) ([]byte, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: revision}
	content, _, resp, err := h.gh.Repositories.GetContents(ctx, owner, name, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("get contents: %w", err)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return []byte(decoded), nil
}

func (h *GitHubHost) GetDiff(ctx context.Context, repo, base, head string) ([]ChangedFile, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	comparison, _, err := h.gh.Repositories.CompareCommits(ctx, owner, name, base, head, nil)
	if err != nil {
		return nil, fmt.Errorf("compare commits: %w", err)
	}

	changed := make([]ChangedFile, 0, len(comparison.Files))
	for _, f := range comparison.Files {
		changed = append(changed, ChangedFile{
			Path:   f.GetFilename(),
			Status: f.GetStatus(),
		})
	}
	return changed, nil
}
