package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

var errNotConfigured = errors.New("not configured")

type componentStatus struct {
	OK     bool   `json:"ok"`
	Driver string `json:"driver,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra describes each backend and what breaks when it is down.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"redis": checkRedis(r, d),
			"store": checkStore(r, d),
			"auth":  authStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

// overallStatus is "down" when bookmarks cannot be read, "degraded" when
// only Redis side features (revisions, sign-out list) are affected.
func overallStatus(components map[string]componentStatus) string {
	if !components["store"].OK {
		return "down"
	}
	if !components["redis"].OK {
		return "degraded"
	}
	return "ok"
}

func checkRedis(r *http.Request, d deps.Deps) componentStatus {
	if err := pingRedis(r.Context(), d); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "sign-out and live refresh unavailable",
			Error:  errorLabel(err),
		}
	}
	return componentStatus{OK: true}
}

func checkStore(r *http.Request, d deps.Deps) componentStatus {
	if err := pingStore(r.Context(), d); err != nil {
		return componentStatus{
			OK:     false,
			Driver: d.StoreDriver,
			Impact: "bookmarks unavailable",
			Error:  errorLabel(err),
		}
	}
	return componentStatus{OK: true, Driver: d.StoreDriver}
}

func authStatus(d deps.Deps) componentStatus {
	var modes []string
	if d.Identity != nil {
		modes = append(modes, "oidc")
	}
	if d.DevLogin {
		modes = append(modes, "dev")
	}
	if len(modes) == 0 {
		return componentStatus{OK: false, Error: "no login method"}
	}
	mode := modes[0]
	if len(modes) > 1 {
		mode += "+" + modes[1]
	}
	return componentStatus{OK: true, Mode: mode}
}

// errorLabel keeps connection details out of the response.
func errorLabel(err error) string {
	if errors.Is(err, errNotConfigured) {
		return "not configured"
	}
	return "unreachable"
}
