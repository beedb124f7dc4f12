package httputil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/config"
)

const AuthCookieName = "auth_token"

func SetAuthCookie(w http.ResponseWriter, token string) {
	maxAge := int(config.AppConfig.AccessTokenTTL.Seconds())
	isProduction := strings.HasPrefix(config.AppConfig.FrontendURL, "https://")

	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isProduction,
	}

	// SameSite=None requires Secure=true, so use Lax for development
	if isProduction {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, cookie)
}

func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// GetTokenFromRequest reads the bearer token, falling back to the auth cookie.
func GetTokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
			return token, nil
		}
		return "", errors.New("authorization header must be a bearer token")
	}

	cookie, err := r.Cookie(AuthCookieName)
	if err != nil || cookie.Value == "" {
		return "", errors.New("no auth token found in header or cookie")
	}
	return cookie.Value, nil
}
