package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/session"
	"github.com/hazelrye/deepcuts/internal/shared"
	"github.com/hazelrye/deepcuts/internal/tasks"
)

// SessionCookie is the cookie carrying the browser session id.
const SessionCookie = "deepcuts_session"

// Pipeline is the read-side curation surface the API dispatches to.
// Implemented by [tasks.Engine].
type Pipeline interface {
	Search(ctx context.Context, query string, progress chan<- tasks.ProgressUpdate) ([]models.ArtistRef, error)
	Curate(ctx context.Context, artistIDs []string, progress chan<- tasks.ProgressUpdate) (models.CuratedPlaylist, error)
}

// Publisher publishes a session's curated playlist. Implemented by
// [tasks.Exporter].
type Publisher interface {
	Export(ctx context.Context, state *session.State, progress chan<- tasks.ProgressUpdate) (string, error)
}

// Authorizer runs the delegated authorization flow. Implemented by
// [services.TokenManager].
type Authorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (models.Credential, error)
}

// API implements the [Handler] interface for the JSON curation endpoints
// and the OAuth flow. All state lives in the session store keyed by the
// session cookie; the API itself is stateless.
type API struct {
	logger    *log.Logger
	store     session.Store
	auth      Authorizer
	pipeline  Pipeline
	publisher Publisher
	mux       *http.ServeMux
	now       func() time.Time
}

// NewAPI creates the API handler.
func NewAPI(logger *log.Logger, store session.Store, auth Authorizer, pipeline Pipeline, publisher Publisher) *API {
	a := &API{
		logger:    logger,
		store:     store,
		auth:      auth,
		pipeline:  pipeline,
		publisher: publisher,
		mux:       http.NewServeMux(),
		now:       time.Now,
	}

	a.mux.HandleFunc("POST /api/search", a.handleSearch)
	a.mux.HandleFunc("POST /api/curate", a.handleCurate)
	a.mux.HandleFunc("GET /api/playlist", a.handlePlaylist)
	a.mux.HandleFunc("POST /api/export", a.handleExport)
	a.mux.HandleFunc("GET /auth/login", a.handleLogin)
	a.mux.HandleFunc("GET /callback", a.handleCallback)
	a.mux.HandleFunc("POST /auth/logout", a.handleLogout)

	return a
}

// Routes returns the method-qualified patterns this handler serves.
func (a *API) Routes() []string {
	return []string{
		"POST /api/search",
		"POST /api/curate",
		"GET /api/playlist",
		"POST /api/export",
		"GET /auth/login",
		"GET /callback",
		"POST /auth/logout",
	}
}

// ServeHTTP implements [http.Handler].
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// session resolves the request's session state, creating a fresh session
// (and setting the cookie) when none exists.
func (a *API) session(w http.ResponseWriter, r *http.Request) (*session.State, error) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		state, err := a.store.Get(r.Context(), cookie.Value)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, shared.ErrSessionNotFound) {
			return nil, err
		}
	}

	state := session.NewState()
	if err := a.store.Put(r.Context(), state); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    state.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	state, err := a.session(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		a.writeError(w, http.StatusBadRequest, "a non-empty query is required")
		return
	}

	artists, err := a.pipeline.Search(r.Context(), req.Query, nil)
	if err != nil {
		a.logger.Error("artist search failed", "query", req.Query, "error", err)
		a.writeError(w, http.StatusBadGateway, "artist search failed")
		return
	}

	// A new search starts a new curation: any previous playlist and its
	// export marker are stale.
	state.SearchResults = artists
	state.ResetCuration()
	state.UpdatedAt = a.now().UTC()
	if err := a.store.Put(r.Context(), state); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"artists": artists})
}

func (a *API) handleCurate(w http.ResponseWriter, r *http.Request) {
	state, err := a.session(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var req struct {
		ArtistIDs []string `json:"artist_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ArtistIDs) == 0 {
		a.writeError(w, http.StatusBadRequest, "at least one artist id is required")
		return
	}

	playlist, err := a.pipeline.Curate(r.Context(), req.ArtistIDs, nil)
	if err != nil {
		a.logger.Error("curation failed", "artists", len(req.ArtistIDs), "error", err)
		a.writeError(w, http.StatusBadGateway, "curation failed")
		return
	}

	state.ResetCuration()
	state.Playlist = &playlist
	state.UpdatedAt = a.now().UTC()
	if err := a.store.Put(r.Context(), state); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	a.writeJSON(w, http.StatusOK, playlist)
}

func (a *API) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	state, err := a.session(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if state.Playlist == nil {
		a.writeError(w, http.StatusNotFound, "no curated playlist in this session")
		return
	}

	a.writeJSON(w, http.StatusOK, state.Playlist)
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	state, err := a.session(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if state.Playlist == nil || len(state.Playlist.Tracks) == 0 {
		a.writeError(w, http.StatusConflict, "curate a playlist before exporting")
		return
	}

	if !state.Authenticated(a.now()) {
		a.requireAuth(w, r, state, "/api/export")
		return
	}

	url, err := a.publisher.Export(r.Context(), state, nil)
	switch {
	case err == nil:
		a.writeJSON(w, http.StatusOK, map[string]string{"url": url})
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		a.requireAuth(w, r, state, "/api/export")
	case errors.Is(err, shared.ErrNoPlaylist), errors.Is(err, shared.ErrNoExportableTracks):
		a.writeError(w, http.StatusConflict, err.Error())
	default:
		a.logger.Error("export failed", "session", state.ID, "error", err)
		a.writeError(w, http.StatusBadGateway, "export failed")
	}
}

// requireAuth stores a pending-authorization marker on the session and
// answers 401 with the URL the client must send the user to. The return
// path is replayed after the callback completes.
func (a *API) requireAuth(w http.ResponseWriter, r *http.Request, state *session.State, returnPath string) {
	state.AuthState = shared.GenerateID()
	state.ReturnPath = returnPath
	state.UpdatedAt = a.now().UTC()
	if err := a.store.Put(r.Context(), state); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	a.writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error":    "authorization required",
		"auth_url": a.auth.AuthURL(state.AuthState),
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}
