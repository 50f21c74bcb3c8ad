package favorites

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "cardtracker/internal/errors"
	"cardtracker/pkg/contracts/domain"
)

const githubAPIVersion = "2022-11-28"

// GitHubBackend stores the favorites document as a single JSON file in a
// GitHub repository, using the contents API. The file SHA returned by a
// read doubles as the version token: a write that carries a stale SHA is
// rejected by the API and reported as a conflict.
type GitHubBackend struct {
	baseURL string
	repo    string
	branch  string
	path    string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// GitHubOptions carries the remote repository coordinates. Token and Repo
// must both be set for the backend to be considered configured.
type GitHubOptions struct {
	BaseURL string
	Repo    string
	Branch  string
	Path    string
	Token   string
	Timeout time.Duration
}

func NewGitHubBackend(opts GitHubOptions, logger *slog.Logger) *GitHubBackend {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.github.com"
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.Path == "" {
		opts.Path = "data/favorites.json"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubBackend{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		repo:    opts.Repo,
		branch:  opts.Branch,
		path:    opts.Path,
		token:   opts.Token,
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}
}

func (g *GitHubBackend) Name() string { return "github" }

func (g *GitHubBackend) configured() bool {
	return g.token != "" && g.repo != ""
}

func (g *GitHubBackend) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", g.baseURL, g.repo, g.path)
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Read fetches the favorites file from the configured branch. A 404 means
// the file does not exist yet and yields an empty document with an empty
// token. A stored document that fails to parse is logged and replaced by
// an empty document so the next save repairs it; the SHA is kept so the
// save still targets the right version.
func (g *GitHubBackend) Read(ctx context.Context) (*domain.FavoritesDocument, string, error) {
	if !g.configured() {
		return nil, "", ErrNotConfigured
	}

	reqURL := g.contentsURL() + "?ref=" + url.QueryEscape(g.branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", apperrors.NewNetworkError("favorites read", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", apperrors.NewNetworkError("favorites read", fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// handled below
	case http.StatusNotFound:
		return domain.NewFavoritesDocument(), "", nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", apperrors.NewNetworkError("favorites read",
			fmt.Errorf("%w: GET %s: status %d: %s", apperrors.ErrBackendUnavailable, g.path, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var contents contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&contents); err != nil {
		return nil, "", apperrors.NewNetworkError("favorites read", fmt.Errorf("decode contents response: %w", err))
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(contents.Content, "\n", ""))
	if err != nil {
		g.logger.Warn("favorites document is not valid base64, starting fresh",
			slog.String("path", g.path), slog.String("error", err.Error()))
		return domain.NewFavoritesDocument(), contents.SHA, nil
	}

	doc := domain.NewFavoritesDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		g.logger.Warn("favorites document is malformed, starting fresh",
			slog.String("path", g.path), slog.String("error", err.Error()))
		return domain.NewFavoritesDocument(), contents.SHA, nil
	}
	doc.Normalize()
	return doc, contents.SHA, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// Write replaces the stored favorites file. The token is the SHA from the
// read that produced doc; an empty token creates the file. GitHub answers
// 409 or 422 when the SHA is stale, which surfaces as ErrWriteConflict.
func (g *GitHubBackend) Write(ctx context.Context, doc *domain.FavoritesDocument, token string) error {
	if !g.configured() {
		return ErrNotConfigured
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("favorites write", err)
	}

	payload := putRequest{
		Message: fmt.Sprintf("update favorites (%s)", time.Now().UTC().Format(time.RFC3339)),
		Content: base64.StdEncoding.EncodeToString(raw),
		Branch:  g.branch,
		SHA:     token,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewStorageError("favorites write", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return apperrors.NewNetworkError("favorites write", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("favorites write", fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: PUT %s: status %d", apperrors.ErrWriteConflict, g.path, resp.StatusCode)
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.NewNetworkError("favorites write",
			fmt.Errorf("%w: PUT %s: status %d: %s", apperrors.ErrBackendUnavailable, g.path, resp.StatusCode, strings.TrimSpace(string(respBody))))
	}
}

func (g *GitHubBackend) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
}
