package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const pageTitle = "Smart Bookmark Manager"

type formValues struct {
	Title string
	URL   string
}

type pageData struct {
	Title         string
	Session       *auth.Session
	Bookmarks     []*domain.Bookmark
	Revision      int64
	PollMillis    int64
	Error         string
	Form          formValues
	APIToken      string
	OIDCEnabled   bool
	DevLogin      bool
	ProviderLabel string
}

// render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func render(w http.ResponseWriter, d deps.Deps, name string, status int, data pageData) {
	data.Title = pageTitle
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		d.Logger.Error("failed to render page", logger.String("page", name), logger.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func seeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// renderHome loads the list and renders the main page. A failed load keeps
// the status of that failure; otherwise status is used.
func renderHome(w http.ResponseWriter, r *http.Request, d deps.Deps, status int, data pageData) {
	ctx := r.Context()

	session := auth.FromContext(ctx)
	bookmarks, err := d.Bookmarks.List(ctx)
	if errors.Is(err, domain.ErrUnauthenticated) || session == nil {
		seeOther(w, r, "/login")
		return
	}
	if err != nil {
		f := describe(err)
		status = f.Status
		if data.Error == "" {
			data.Error = f.Message
		}
	}

	data.Session = session
	data.Bookmarks = bookmarks
	data.PollMillis = d.PollInterval.Milliseconds()
	if d.Revisions != nil {
		if rev, err := d.Revisions.Current(ctx, session.OwnerID); err == nil {
			data.Revision = rev
		}
	}
	render(w, d, "index", status, data)
}

// Home renders the signed-in user's bookmarks, or sends anonymous visitors to /login.
func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderHome(w, r, d, http.StatusOK, pageData{})
	}
}

// AddBookmarkForm handles the add form. Failures re-render the page with the
// submitted values so nothing typed is lost.
func AddBookmarkForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			renderHome(w, r, d, http.StatusBadRequest, pageData{Error: "Invalid form"})
			return
		}

		form := formValues{Title: r.PostFormValue("title"), URL: r.PostFormValue("url")}
		if _, err := d.Bookmarks.Create(r.Context(), form.Title, form.URL); err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				seeOther(w, r, "/login")
				return
			}
			f := describe(err)
			renderHome(w, r, d, f.Status, pageData{Error: f.Message, Form: form})
			return
		}

		seeOther(w, r, "/")
	}
}

// DeleteBookmarkForm handles the per-row delete button. A bookmark that is
// already gone counts as deleted.
func DeleteBookmarkForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Bookmarks.Delete(r.Context(), chi.URLParam(r, "id"))
		switch {
		case err == nil, isNotFound(err):
			seeOther(w, r, "/")
		case errors.Is(err, domain.ErrUnauthenticated):
			seeOther(w, r, "/login")
		default:
			f := describe(err)
			renderHome(w, r, d, f.Status, pageData{Error: f.Message})
		}
	}
}

// IssueToken mints a CLI token for the browser session and shows it once.
func IssueToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := auth.FromContext(r.Context())
		if session == nil {
			seeOther(w, r, "/login")
			return
		}
		if session.Kind != auth.KindBrowser {
			writeError(w, domain.ErrForbidden)
			return
		}

		token, _, err := d.Sessions.Issue(auth.Identity{
			Subject:   session.OwnerID,
			Name:      session.Name,
			Email:     session.Email,
			AvatarURL: session.AvatarURL,
		}, auth.KindAPI, d.APITokenTTL)
		if err != nil {
			d.Logger.Error("failed to issue api token",
				logger.Owner(session.OwnerID),
				logger.Error(err))
			renderHome(w, r, d, http.StatusInternalServerError, pageData{Error: "Failed to create token"})
			return
		}

		d.Logger.Info("api token issued", logger.Owner(session.OwnerID))
		renderHome(w, r, d, http.StatusOK, pageData{APIToken: token})
	}
}

// Login renders the sign-in page. Signed-in visitors go straight to the list.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) != nil {
			seeOther(w, r, "/")
			return
		}
		renderLogin(w, d, http.StatusOK, "")
	}
}

func renderLogin(w http.ResponseWriter, d deps.Deps, status int, msg string) {
	render(w, d, "login", status, pageData{
		Error:         msg,
		OIDCEnabled:   d.Identity != nil,
		DevLogin:      d.DevLogin,
		ProviderLabel: d.ProviderLabel,
	})
}
