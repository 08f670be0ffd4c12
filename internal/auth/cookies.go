package auth

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
	CodeVerifierCookie = "sb-code-verifier"

	codeVerifierMaxAge = 10 * 60
	refreshTokenMaxAge = 30 * 24 * 60 * 60
)

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

// SetSessionCookies stores the identity provider session in httpOnly cookies
func SetSessionCookies(w http.ResponseWriter, accessToken, refreshToken string, expiresIn int, config CookieConfig) {
	setCookie(w, AccessTokenCookie, accessToken, expiresIn, config)
	if refreshToken != "" {
		setCookie(w, RefreshTokenCookie, refreshToken, refreshTokenMaxAge, config)
	}
}

// ClearSessionCookies removes the session cookies
func ClearSessionCookies(w http.ResponseWriter, config CookieConfig) {
	clearCookie(w, AccessTokenCookie, config)
	clearCookie(w, RefreshTokenCookie, config)
}

// SetCodeVerifierCookie stores the PKCE verifier for the duration of an authorization round trip
func SetCodeVerifierCookie(w http.ResponseWriter, verifier string, config CookieConfig) {
	setCookie(w, CodeVerifierCookie, verifier, codeVerifierMaxAge, config)
}

// ClearCodeVerifierCookie removes the PKCE verifier once it has been used
func ClearCodeVerifierCookie(w http.ResponseWriter, config CookieConfig) {
	clearCookie(w, CodeVerifierCookie, config)
}

// GetCookie retrieves a cookie value, "" when absent
func GetCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	})
}

func clearCookie(w http.ResponseWriter, name string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1, // Negative MaxAge deletes the cookie
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	})
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
