package middleware

import (
	"net/http"
	"time"

	"github.com/weldpoly/quotecart-backend/pkg/auth/session"
	"github.com/weldpoly/quotecart-backend/pkg/config"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
)

// Session resolves the caller's cart session from the signed cookie, minting
// a fresh session when the cookie is missing, expired or tampered with. Every
// request downstream of this middleware has a session ID in its context.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				sid, err := session.Parse(cfg, cookie.Value)
				if err == nil {
					sessionID = sid
				} else if logg != nil {
					logg.Warn(ctx, "rejecting session cookie: "+err.Error())
				}
			}

			if sessionID == "" {
				sessionID = session.NewSessionID()
				token, err := session.Mint(cfg, time.Now(), sessionID)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "minting session token", err)
					}
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL / time.Second),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
