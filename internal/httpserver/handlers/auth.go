package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
)

const (
	loginOIDC = "oidc"
	loginDev  = "dev"

	maxDevNameLen = 64
)

// AuthLogin starts the OIDC authorization code flow.
func AuthLogin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Identity == nil {
			http.NotFound(w, r)
			return
		}
		state := auth.NewState()
		auth.SetStateCookie(w, state, d.SecureCookies)
		http.Redirect(w, r, d.Identity.AuthCodeURL(state), http.StatusFound)
	}
}

// AuthCallback finishes the OIDC flow and opens a browser session.
func AuthCallback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Identity == nil {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		state := auth.ConsumeStateCookie(w, r, d.SecureCookies)
		if state == "" || q.Get("state") != state {
			metrics.Logins.WithLabelValues(loginOIDC, "bad_state").Inc()
			renderLogin(w, d, http.StatusBadRequest, "Sign-in expired, please try again")
			return
		}
		if e := q.Get("error"); e != "" {
			metrics.Logins.WithLabelValues(loginOIDC, "denied").Inc()
			d.Logger.Info("identity provider refused login", logger.String("error", e))
			renderLogin(w, d, http.StatusUnauthorized, "Sign-in was cancelled")
			return
		}

		identity, err := d.Identity.Exchange(r.Context(), q.Get("code"))
		if err != nil {
			metrics.Logins.WithLabelValues(loginOIDC, "failed").Inc()
			d.Logger.Warn("oidc code exchange failed", logger.Error(err))
			renderLogin(w, d, http.StatusUnauthorized, "Sign-in failed")
			return
		}

		startSession(w, r, d, *identity, loginOIDC)
	}
}

// DevLogin signs in with just a user name. Only routed when enabled.
func DevLogin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.DevLogin {
			http.NotFound(w, r)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		name := strings.TrimSpace(r.PostFormValue("name"))
		if name == "" || len(name) > maxDevNameLen {
			metrics.Logins.WithLabelValues(loginDev, "failed").Inc()
			renderLogin(w, d, http.StatusBadRequest, "Enter a name")
			return
		}
		startSession(w, r, d, auth.DevIdentity(name), loginDev)
	}
}

func startSession(w http.ResponseWriter, r *http.Request, d deps.Deps, id auth.Identity, method string) {
	token, session, err := d.Sessions.Issue(id, auth.KindBrowser, d.SessionTTL)
	if err != nil {
		metrics.Logins.WithLabelValues(method, "failed").Inc()
		d.Logger.Error("failed to issue session", logger.String("method", method), logger.Error(err))
		renderLogin(w, d, http.StatusInternalServerError, "Sign-in failed")
		return
	}

	metrics.Logins.WithLabelValues(method, "ok").Inc()
	d.Logger.Info("user signed in",
		logger.Owner(session.OwnerID),
		logger.String("method", method))

	auth.SetSessionCookie(w, token, session.ExpiresAt, d.SecureCookies)
	seeOther(w, r, "/")
}

// Logout revokes the current token for the rest of its lifetime and clears the cookie.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := auth.FromContext(r.Context()); session != nil && d.Revoker != nil {
			ttl := session.ExpiresAt.Sub(d.Now())
			if err := d.Revoker.Revoke(r.Context(), session.TokenID, ttl); err != nil {
				d.Logger.Warn("failed to revoke session",
					logger.Owner(session.OwnerID),
					logger.Error(err))
			}
		}
		auth.ClearSessionCookie(w, d.SecureCookies)
		seeOther(w, r, "/login")
	}
}
