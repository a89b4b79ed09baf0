package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready  bool            `json:"ready"`
	Checks map[string]bool `json:"checks"`
}

// Readyz reports ready only when Redis and the bookmark store answer.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]bool{
			"redis": pingRedis(r.Context(), d) == nil,
			"store": pingStore(r.Context(), d) == nil,
		}

		resp := readyzResponse{Ready: true, Checks: checks}
		status := http.StatusOK
		for _, ok := range checks {
			if !ok {
				resp.Ready = false
				status = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, status, resp)
	}
}

func pingRedis(ctx context.Context, d deps.Deps) error {
	if d.RedisClient == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return d.RedisClient.Ping(ctx).Err()
}

func pingStore(ctx context.Context, d deps.Deps) error {
	p, ok := d.Store.(domain.Pinger)
	if !ok {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}
