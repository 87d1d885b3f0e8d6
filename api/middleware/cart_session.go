package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/logger"
)

// CartSession identifies the shopper's cart by cookie, issuing a new id when
// the cookie is missing or malformed.
func CartSession(cfg config.CartSessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = "pf_cart"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(name); err == nil {
				if parsed, parseErr := uuid.Parse(c.Value); parseErr == nil {
					sessionID = parsed.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
