// Package github stores week files in a GitHub repository through the
// contents API. The blob SHA of each file is its revision.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/isoweek"
	"github.com/julianstephens/weekdiary/internal/logger"
	"github.com/julianstephens/weekdiary/internal/models"
	"github.com/julianstephens/weekdiary/internal/storage"
)

// Config selects the repository and tunes the HTTP behavior.
type Config struct {
	Owner  string
	Repo   string
	Branch string
	Dir    string
	Token  string

	BaseURL           string       // defaults to the public API
	HTTPClient        *http.Client // defaults to a client with a request timeout
	MaxRetries        int
	InitialBackoff    time.Duration
	RequestsPerSecond float64
}

// Client implements storage.WeekStore and storage.WeekLister.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("a GitHub token is required")
	}
	if cfg.Branch == "" {
		cfg.Branch = constants.DefaultBranch
	}
	if cfg.Dir == "" {
		cfg.Dir = constants.DefaultDataDir
	}
	cfg.Dir = strings.Trim(cfg.Dir, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.GitHubAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = constants.GitHubInitialBackoff
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = constants.GitHubRequestsPerSec
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.GitHubRequestTimeout}
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// FilePath is the repository path of a week's file.
func (c *Client) FilePath(id isoweek.WeekID) string {
	return path.Join(c.cfg.Dir, id.String()+".json")
}

func (c *Client) contentsURL(p string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo), escapePath(p))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

type contentFile struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content,omitempty"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

type writeResponse struct {
	Content contentFile `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) fetch(ctx context.Context, op string, id isoweek.WeekID) (*contentFile, error) {
	u := c.contentsURL(c.FilePath(id)) + "?ref=" + url.QueryEscape(c.cfg.Branch)
	resp, err := c.do(ctx, op, id.String(), http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, storage.ErrNotFound
	default:
		return nil, c.statusError(op, id.String(), resp)
	}

	var file contentFile
	if err := json.Unmarshal(resp.body, &file); err != nil {
		return nil, &storage.StorageError{Op: op, Week: id.String(), Kind: storage.KindDecode, Err: err}
	}
	if file.Type != "" && file.Type != "file" {
		return nil, &storage.StorageError{Op: op, Week: id.String(), Kind: storage.KindDecode,
			Err: fmt.Errorf("%s is a %s, not a file", file.Path, file.Type)}
	}
	return &file, nil
}

func (c *Client) Load(ctx context.Context, id isoweek.WeekID) (*models.WeekRecord, storage.Revision, error) {
	file, err := c.fetch(ctx, "load", id)
	if err != nil {
		return nil, "", err
	}

	data, err := decodeContent(file)
	if err != nil {
		return nil, "", &storage.StorageError{Op: "load", Week: id.String(), Kind: storage.KindDecode, Err: err}
	}
	rec, err := models.DecodeWeek(data)
	if err != nil {
		return nil, "", &storage.StorageError{Op: "load", Week: id.String(), Kind: storage.KindDecode, Err: err}
	}
	logger.Debug("Loaded week from GitHub", "week", id.String(), "sha", file.SHA)
	return rec, storage.Revision(file.SHA), nil
}

func decodeContent(file *contentFile) ([]byte, error) {
	if file.Encoding != "" && file.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q", file.Encoding)
	}
	// The API wraps base64 content at 60 columns.
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(file.Content)
	return base64.StdEncoding.DecodeString(clean)
}

// Save writes rec. With an empty expected revision the current SHA is looked
// up first, so an existing file is replaced rather than rejected.
func (c *Client) Save(ctx context.Context, rec *models.WeekRecord, expected storage.Revision) (storage.Revision, error) {
	week := rec.Week.String()
	sha := string(expected)
	if sha == "" {
		file, err := c.fetch(ctx, "save", rec.Week)
		switch {
		case err == nil:
			sha = file.SHA
		case errors.Is(err, storage.ErrNotFound):
		default:
			return "", err
		}
	}

	data, err := models.EncodeWeek(rec)
	if err != nil {
		return "", &storage.StorageError{Op: "save", Week: week, Kind: storage.KindDecode, Err: err}
	}
	body, err := json.Marshal(writeRequest{
		Message: "Save diary data for " + week,
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     sha,
		Branch:  c.cfg.Branch,
	})
	if err != nil {
		return "", &storage.StorageError{Op: "save", Week: week, Kind: storage.KindDecode, Err: err}
	}

	resp, err := c.do(ctx, "save", week, http.MethodPut, c.contentsURL(c.FilePath(rec.Week)), body)
	if err != nil {
		return "", err
	}
	switch resp.status {
	case http.StatusOK, http.StatusCreated:
	default:
		if isConflict(resp) {
			return "", &storage.ConflictError{Week: rec.Week, Expected: storage.Revision(sha)}
		}
		return "", c.statusError("save", week, resp)
	}

	var out writeResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", &storage.StorageError{Op: "save", Week: week, Kind: storage.KindDecode, Err: err}
	}
	logger.Info("Saved week to GitHub", "week", week, "sha", out.Content.SHA)
	return storage.Revision(out.Content.SHA), nil
}

func (c *Client) Delete(ctx context.Context, id isoweek.WeekID) error {
	file, err := c.fetch(ctx, "delete", id)
	if err != nil {
		return err
	}

	body, err := json.Marshal(writeRequest{
		Message: "Delete diary data for " + id.String(),
		SHA:     file.SHA,
		Branch:  c.cfg.Branch,
	})
	if err != nil {
		return &storage.StorageError{Op: "delete", Week: id.String(), Kind: storage.KindDecode, Err: err}
	}

	resp, err := c.do(ctx, "delete", id.String(), http.MethodDelete, c.contentsURL(c.FilePath(id)), body)
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK:
		logger.Info("Deleted week from GitHub", "week", id.String())
		return nil
	case http.StatusNotFound:
		return storage.ErrNotFound
	default:
		if isConflict(resp) {
			return &storage.ConflictError{Week: id, Expected: storage.Revision(file.SHA)}
		}
		return c.statusError("delete", id.String(), resp)
	}
}

type repoInfo struct {
	FullName    string `json:"full_name"`
	Permissions struct {
		Push bool `json:"push"`
	} `json:"permissions"`
}

// Ping checks that the repository exists and the token may write to it.
func (c *Client) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/repos/%s/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.Owner), url.PathEscape(c.cfg.Repo))
	resp, err := c.do(ctx, "ping", "", http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return c.statusError("ping", "", resp)
	}

	var info repoInfo
	if err := json.Unmarshal(resp.body, &info); err != nil {
		return &storage.StorageError{Op: "ping", Kind: storage.KindDecode, Err: err}
	}
	if !info.Permissions.Push {
		return &storage.StorageError{Op: "ping", Kind: storage.KindAuth,
			Err: fmt.Errorf("token cannot write to %s", info.FullName)}
	}
	return nil
}

// List returns the weeks present in the data directory, oldest first.
func (c *Client) List(ctx context.Context) ([]isoweek.WeekID, error) {
	u := c.contentsURL(c.cfg.Dir) + "?ref=" + url.QueryEscape(c.cfg.Branch)
	resp, err := c.do(ctx, "list", "", http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, c.statusError("list", "", resp)
	}

	var entries []contentFile
	if err := json.Unmarshal(resp.body, &entries); err != nil {
		return nil, &storage.StorageError{Op: "list", Kind: storage.KindDecode, Err: err}
	}

	var weeks []isoweek.WeekID
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(e.Name, ".json") {
			continue
		}
		id, err := isoweek.Parse(strings.TrimSuffix(e.Name, ".json"))
		if err != nil {
			continue
		}
		weeks = append(weeks, id)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks, nil
}

func isConflict(resp *response) bool {
	switch resp.status {
	case http.StatusConflict, http.StatusPreconditionFailed:
		return true
	case http.StatusUnprocessableEntity:
		var e apiError
		_ = json.Unmarshal(resp.body, &e)
		return strings.Contains(strings.ToLower(e.Message), "sha")
	}
	return false
}

func (c *Client) statusError(op, week string, resp *response) error {
	var e apiError
	_ = json.Unmarshal(resp.body, &e)
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(resp.status)
	}

	kind := storage.KindStatus
	switch resp.status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = storage.KindAuth
		if resp.header.Get("X-RateLimit-Remaining") == "0" {
			kind = storage.KindStatus
			msg = "rate limit exceeded"
		}
	}
	return &storage.StorageError{Op: op, Week: week, Kind: kind, StatusCode: resp.status, Err: errors.New(msg)}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// replayable reports whether a failed attempt of method may be sent again
// after status (0 for a transport error). A write whose outcome is unknown
// may already have landed, and resending it would carry a stale sha, so
// writes are only repeated after a 429, which GitHub sends before acting.
func replayable(method string, status int) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return status == 0 || retryable(status)
	}
	return status == http.StatusTooManyRequests
}

// do sends one logical request with exponential backoff. Reads are retried
// after transport errors, 429 and 5xx; writes only after 429. Other statuses
// are returned to the caller as is.
func (c *Client) do(ctx context.Context, op, week, method, u string, body []byte) (*response, error) {
	backoff := c.cfg.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying GitHub request", "op", op, "week", week, "attempt", attempt, "backoff", backoff)
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.send(ctx, method, u, body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &storage.StorageError{Op: op, Week: week, Kind: storage.KindTransport, Err: err}
			if !replayable(method, 0) {
				return nil, lastErr
			}
			continue
		}
		if retryable(resp.status) {
			lastErr = c.statusError(op, week, resp)
			if !replayable(method, resp.status) {
				return nil, lastErr
			}
			if wait := retryAfter(resp.header); wait > backoff {
				backoff = wait
			}
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, method, u string, body []byte) (*response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", constants.GitHubAPIVersion)
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("request timed out: %w", err)
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	logger.Debug("GitHub request", "method", method, "url", u, "status", httpResp.StatusCode, "elapsed", time.Since(start))
	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
