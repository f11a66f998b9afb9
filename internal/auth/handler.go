package auth

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Require redirects requests without a valid session to the login page.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Authenticated(r) {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPI answers requests without a valid session with 401 and a JSON
// error.
func (a *Auth) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Authenticated(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleLogin checks the submitted password. On success it sets the
// session cookie and redirects to the dashboard.
func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	err := a.CheckPassword(r.PostFormValue("password"))
	switch {
	case errors.Is(err, ErrNotConfigured):
		a.log.Error("admin login unavailable", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	case err != nil:
		a.log.Info("admin login failed", zap.String("remote", r.RemoteAddr))
		http.Redirect(w, r, LoginPath+"?error=1", http.StatusSeeOther)
		return
	}

	token, err := a.NewSession()
	if err != nil {
		a.log.Error("failed to create session", zap.Error(err))
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, a.sessionCookie(token, int(a.ttl.Seconds())))
	a.log.Info("admin logged in", zap.String("remote", r.RemoteAddr))
	http.Redirect(w, r, AdminPath, http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
func (a *Auth) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, a.sessionCookie("", -1))
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
