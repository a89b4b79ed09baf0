// Package client talks to the shelf JSON API with a CLI token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// ErrNotFound is matched by errors.Is on a 404 APIError.
var ErrNotFound = errors.New("bookmark not found")

// Bookmark is the API view of a bookmark.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List is one GET /api/bookmarks result.
type List struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Revision  int64      `json:"revision"`
	// Changed is false when Bookmarks is the cached copy: the server answered
	// 304, or a later call already cached a newer list.
	Changed bool `json:"-"`
}

// APIError is a non-2xx answer. Message is the server's user-facing text.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client is safe for concurrent use. It remembers the last list and its
// ETag so an unchanged list costs a 304.
//
// Concurrent List calls may complete out of order. Each call is numbered
// when sent and a response only replaces the cached list when it was sent
// after the one already cached.
type Client struct {
	base  string
	token string
	http  *http.Client

	mu      sync.Mutex
	sent    uint64
	applied uint64
	etag    string
	last    List
}

// New returns a client for the server at base (ex: "https://shelf.example.com").
func New(base, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", base)
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}, nil
}

// List fetches the caller's bookmarks, newest first.
func (c *Client) List(ctx context.Context) (List, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/bookmarks", nil)
	if err != nil {
		return List{}, err
	}

	c.mu.Lock()
	c.sent++
	seq := c.sent
	if c.etag != "" {
		req.Header.Set("If-None-Match", c.etag)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return List{}, fmt.Errorf("GET /api/bookmarks: %w", err)
	}
	defer utils.Close(resp.Body)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return c.cached(), nil
	case http.StatusOK:
	default:
		return List{}, readError(resp)
	}

	var list List
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return List{}, fmt.Errorf("decode bookmarks: %w", err)
	}
	if seq < c.applied {
		// A later call already cached a newer list.
		return c.cached(), nil
	}
	list.Changed = true
	c.applied = seq
	c.etag = resp.Header.Get("ETag")
	c.last = list
	return list, nil
}

// cached must be called with c.mu held.
func (c *Client) cached() List {
	l := c.last
	l.Changed = false
	return l
}

// Create adds a bookmark.
func (c *Client) Create(ctx context.Context, title, link string) (*Bookmark, error) {
	body, err := json.Marshal(map[string]string{"title": title, "url": link})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/bookmarks", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /api/bookmarks: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return nil, readError(resp)
	}

	var b Bookmark
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bookmark: %w", err)
	}
	return &b, nil
}

// Delete removes a bookmark. A bookmark that is already gone returns ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE /api/bookmarks/%s: %w", id, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		return readError(resp)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func readError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
