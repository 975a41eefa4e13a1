package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/pitch-perfect/internal/config"
	"github.com/AdamBeresnev/pitch-perfect/internal/httputil"
	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

// SessionUserKey is the scs session key holding the logged in user's id.
const SessionUserKey = "userID"

// UserLoader is the lookup the auth middleware needs from the user store.
type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// InitAuth registers the OAuth providers that have credentials configured.
func InitAuth(cfg config.AuthConfig, sessionSecret string) {
	if sessionSecret != "" {
		store := sessions.NewCookieStore([]byte(sessionSecret))
		store.Options.HttpOnly = true
		gothic.Store = store
	}

	var providers []goth.Provider
	if cfg.DiscordKey != "" {
		providers = append(providers, discord.New(cfg.DiscordKey, cfg.DiscordSecret, cfg.DiscordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.GoogleKey != "" {
		providers = append(providers, google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile"))
	}
	if len(providers) == 0 {
		slog.Warn("no OAuth providers configured, only guest login is available")
		return
	}
	goth.UseProviders(providers...)
}

// LoadAuthenticatedUser puts the session's user into the request context when there is one.
// It must run inside sessionManager.LoadAndSave.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, loader UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := sessionUser(r.Context(), sessionManager, loader); user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadSessionUser reads the session cookie without wrapping the response
// writer, for handlers that hijack the connection such as websocket upgrades.
// Session changes made downstream are not saved.
func LoadSessionUser(sessionManager *scs.SessionManager, loader UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(sessionManager.Cookie.Name); err == nil {
				token = cookie.Value
			}
			ctx, err := sessionManager.Load(r.Context(), token)
			if err != nil {
				slog.Warn("failed to load session", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if user := sessionUser(ctx, sessionManager, loader); user != nil {
				ctx = WithUser(ctx, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionUser(ctx context.Context, sessionManager *scs.SessionManager, loader UserLoader) *users.User {
	userIDStr := sessionManager.GetString(ctx, SessionUserKey)
	if userIDStr == "" {
		return nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		sessionManager.Remove(ctx, SessionUserKey)
		return nil
	}

	user, err := loader.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("session refers to unknown user", "user_id", userID, "error", err)
		sessionManager.Remove(ctx, SessionUserKey)
		return nil
	}
	return user
}

// RequireAuth sends anonymous page requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIAuth answers anonymous API requests with a JSON 401.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedUser(r.Context()) == nil {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, users.UserKey, user)
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	user, _ := ctx.Value(users.UserKey).(*users.User)
	return user
}
