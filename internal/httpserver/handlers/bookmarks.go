package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

const maxBodyBytes = 64 << 10

// RevisionHeader carries the owner's list revision on list responses.
const RevisionHeader = "X-Shelf-Revision"

// bookmarkView is the wire shape of a bookmark. The owner id stays server-side.
type bookmarkView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listResponse struct {
	Bookmarks []bookmarkView `json:"bookmarks"`
	Revision  int64          `json:"revision"`
}

type createRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func toView(b *domain.Bookmark) bookmarkView {
	return bookmarkView{
		ID:        b.ID,
		Title:     b.Title,
		URL:       b.URL,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toViews(list []*domain.Bookmark) []bookmarkView {
	views := make([]bookmarkView, 0, len(list))
	for _, b := range list {
		views = append(views, toView(b))
	}
	return views
}

// ListBookmarks is the polling endpoint. The list is always read from the
// store; the ETag only saves the client from re-downloading an unchanged body.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bookmarks, err := d.Bookmarks.List(ctx)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := listResponse{Bookmarks: toViews(bookmarks)}
		if d.Revisions != nil {
			owner, _ := d.Bookmarks.Owner(ctx)
			rev, err := d.Revisions.Current(ctx, owner)
			if err != nil {
				d.Logger.Warn("failed to read list revision",
					logger.Owner(owner),
					logger.Error(err))
			}
			resp.Revision = rev
		}

		var body bytes.Buffer
		if err := json.NewEncoder(&body).Encode(resp); err != nil {
			writeError(w, err)
			return
		}

		etag := `"` + strconv.FormatUint(xxhash.Sum64(body.Bytes()), 16) + `"`
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "private, no-cache")
		w.Header().Set(RevisionHeader, strconv.FormatInt(resp.Revision, 10))

		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body.Bytes())
	}
}

// CreateBookmark accepts {"title": "...", "url": "..."}.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeBadRequest(w, "invalid_json", "Invalid request body")
			return
		}

		bookmark, err := d.Bookmarks.Create(r.Context(), req.Title, req.URL)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Location", "/api/bookmarks/"+bookmark.ID)
		writeJSON(w, http.StatusCreated, toView(bookmark))
	}
}

// DeleteBookmark removes the bookmark in the path. A concurrent delete that
// won the race is reported as 404.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Bookmarks.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// isNotFound reports whether a delete lost to another delete.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
