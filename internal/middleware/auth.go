package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/store"
)

const sessionCookieName = "earnhub_session"

// logoutPath stays reachable for banned accounts so they can end the session.
const logoutPath = "/api/auth/logout"

// RequireAuth validates the session cookie, checks the account against the
// roster, and populates AuthContext. Banned accounts get a 403 on every route
// except logout.
func RequireAuth(sessionStore *store.SessionStore, eng *engine.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			user, ok := eng.GetUser(sess.Username)
			if !ok {
				unauthorized(w)
				return
			}

			if user.IsBanned && r.URL.Path != logoutPath {
				writeError(w, http.StatusForbidden, "account banned")
				return
			}

			ac := auth.AuthContext{
				Username:     sess.Username,
				SessionToken: sess.Token,
				Admin:        sess.Admin,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin checks that the session has been elevated through the admin gate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
