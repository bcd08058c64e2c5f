package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// Cookies carries a session token split in two: the readable header.payload
// part in "auth" and the signature in an HttpOnly "sign" cookie. Both are
// scoped to the session's URL path.
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func NewCookies(jwt *JWT) *Cookies {
	domain := os.Getenv("COOKIES_DOMAIN")
	secure := os.Getenv("COOKIES_SECURE") == "1"

	sameSite := http.SameSiteLaxMode
	switch strings.ToUpper(os.Getenv("COOKIES_SAMESITE")) {
	case "DEFAULT":
		sameSite = http.SameSiteDefaultMode
	case "STRICT":
		sameSite = http.SameSiteStrictMode
	case "NONE":
		sameSite = http.SameSiteNoneMode
	}

	return &Cookies{
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		jwt:      jwt,
	}
}

func (c *Cookies) Clear(w http.ResponseWriter, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     path,
		Value:    "delete",
		MaxAge:   -1,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     path,
		Value:    "delete",
		MaxAge:   -1,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Refresh(w http.ResponseWriter, path string, token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]
	expires := time.Now().Add(c.jwt.TokenLifetime())
	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Path:     path,
		Value:    header + "." + payload,
		Expires:  expires,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "sign",
		Path:     path,
		Value:    signature,
		Expires:  expires,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	return nil
}

// ParseSessionClaims reads the token from an "Authorization: Bearer" header,
// falling back to the auth/sign cookie pair.
func (c *Cookies) ParseSessionClaims(r *http.Request) (*SessionClaims, error) {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return c.jwt.ParseSessionClaims(strings.TrimSpace(bearer))
	}
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	return c.jwt.ParseSessionClaims(authCookie.Value + "." + signCookie.Value)
}
