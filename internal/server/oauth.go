package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hazelrye/deepcuts/internal/shared"
)

// handleLogin starts the delegated authorization flow: a fresh CSRF state
// token is stored on the session and the browser is redirected to the
// provider's consent page.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := a.session(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	returnPath := r.URL.Query().Get("return")
	if returnPath == "" || returnPath[0] != '/' {
		returnPath = "/"
	}

	state.AuthState = shared.GenerateID()
	state.ReturnPath = returnPath
	state.UpdatedAt = a.now().UTC()
	if err := a.store.Put(r.Context(), state); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	http.Redirect(w, r, a.auth.AuthURL(state.AuthState), http.StatusFound)
}

// handleCallback completes the authorization-code flow.
//
// The state parameter must match the token stored on the session; the code
// is exchanged for a delegated credential, which replaces any previous one.
// A pending return path (an export interrupted by a 401) is replayed via
// redirect.
func (a *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := a.session(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	query := r.URL.Query()
	if state.AuthState == "" || query.Get("state") != state.AuthState {
		a.writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}
	// One callback per authorization attempt.
	state.AuthState = ""

	code := query.Get("code")
	if code == "" {
		a.logger.Warn("authorization denied",
			"error", query.Get("error"),
			"description", query.Get("error_description"),
		)
		state.UpdatedAt = a.now().UTC()
		if err := a.store.Put(r.Context(), state); err != nil {
			a.writeError(w, http.StatusInternalServerError, "failed to persist session")
			return
		}
		a.writeError(w, http.StatusBadRequest, "authorization was denied")
		return
	}

	cred, err := a.auth.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("code exchange failed", "error", err)
		if errors.Is(err, shared.ErrAuthFailed) {
			a.writeError(w, http.StatusBadRequest, "token exchange failed")
		} else {
			a.writeError(w, http.StatusBadGateway, "token exchange failed")
		}
		return
	}

	state.UserCredential = &cred
	returnPath := state.ReturnPath
	state.ReturnPath = ""
	state.UpdatedAt = a.now().UTC()
	if err := a.store.Put(r.Context(), state); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to persist session")
		return
	}

	if returnPath != "" && returnPath != "/" {
		http.Redirect(w, r, returnPath, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body>
	<h1>Authorization successful</h1>
	<p>You are signed in. You can close this window and return to deepcuts.</p>
</body>
</html>
`)
}

// handleLogout deletes the session and expires the cookie.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := a.store.Delete(r.Context(), cookie.Value); err != nil && !errors.Is(err, shared.ErrSessionNotFound) {
			a.writeError(w, http.StatusInternalServerError, "failed to delete session")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}
