package security

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"

	// Both cookies share the 7-day max-age. The access cookie outlives
	// its token's 15-minute exp claim on purpose: the claim is the
	// security boundary, and an expired-but-present cookie is what
	// routes the status probe into the refresh path.
	cookieMaxAge = 7 * 24 * time.Hour
)

func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

func setTokenCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure, // prod=true, dev=false
		SameSite: sameSite(secure),
		MaxAge:   int(cookieMaxAge.Seconds()),
	})
}

// SetSessionCookies writes both token cookies.
func SetSessionCookies(w http.ResponseWriter, accessToken, refreshToken string, secure bool) {
	setTokenCookie(w, AccessCookieName, accessToken, secure)
	setTokenCookie(w, RefreshCookieName, refreshToken, secure)
}

// ClearSessionCookies removes both cookies unconditionally, whether or
// not a valid session existed.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: sameSite(secure),
			MaxAge:   -1,
		})
	}
}

func ReadAccessToken(r *http.Request) (string, error) {
	c, err := r.Cookie(AccessCookieName)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

func ReadRefreshToken(r *http.Request) (string, error) {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}
