// internal/server/session.go
package server

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Authorizer decides whether a request may pass the consent gate. The
// analysis core never sees this interface; it only receives requests
// that already cleared the gate.
type Authorizer interface {
	Authorized(r *http.Request) bool
}

const sessionCookieName = "vigil_session"

// sessionPayload is the plaintext stored inside the encrypted cookie.
type sessionPayload struct {
	GrantedAt time.Time `json:"granted_at"`
	Name      string    `json:"name,omitempty"`
}

// CookieAuthorizer gates requests on an AES-GCM encrypted session cookie
// issued after the consent form is accepted.
type CookieAuthorizer struct {
	aead   cipher.AEAD
	maxAge time.Duration
}

// DefaultSessionAge is how long a granted consent session stays valid.
const DefaultSessionAge = 30 * 24 * time.Hour

// NewCookieAuthorizer derives a 256-bit key from secret. Sessions older
// than maxAge are rejected; maxAge <= 0 means sessions never expire.
func NewCookieAuthorizer(secret string, maxAge time.Duration) (*CookieAuthorizer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret must not be empty")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &CookieAuthorizer{aead: aead, maxAge: maxAge}, nil
}

// Authorized reports whether the request carries a valid session cookie.
func (a *CookieAuthorizer) Authorized(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	payload, err := a.open(cookie.Value)
	if err != nil {
		return false
	}
	if a.maxAge > 0 && time.Since(payload.GrantedAt) > a.maxAge {
		return false
	}
	return true
}

// Grant issues the session cookie recording that consent was given.
func (a *CookieAuthorizer) Grant(w http.ResponseWriter, name string) error {
	value, err := a.seal(sessionPayload{GrantedAt: time.Now().UTC(), Name: name})
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if a.maxAge > 0 {
		cookie.MaxAge = int(a.maxAge.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

func (a *CookieAuthorizer) seal(payload sessionPayload) (string, error) {
	plain, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := a.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (a *CookieAuthorizer) open(value string) (sessionPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return sessionPayload{}, err
	}
	if len(raw) < a.aead.NonceSize() {
		return sessionPayload{}, errors.New("session cookie too short")
	}
	nonce, sealed := raw[:a.aead.NonceSize()], raw[a.aead.NonceSize():]
	plain, err := a.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return sessionPayload{}, fmt.Errorf("unable to decrypt session cookie: %w", err)
	}
	var payload sessionPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return sessionPayload{}, err
	}
	return payload, nil
}

// gateAllowList names the paths reachable without a session.
var gateAllowList = []string{"/consent", "/privacy", "/terms", "/static/", "/healthz"}

// Gate wraps next with the consent check. Requests to allow-listed paths
// pass through; everything else needs an authorized session and is
// otherwise redirected to the consent page (or answered 401 for API
// calls).
func Gate(auth Authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range gateAllowList {
			if r.URL.Path == prefix || (strings.HasSuffix(prefix, "/") && strings.HasPrefix(r.URL.Path, prefix)) {
				next.ServeHTTP(w, r)
				return
			}
		}
		if auth != nil && auth.Authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSON(w, http.StatusUnauthorized, errResp{Error: "consent required"})
			return
		}
		http.Redirect(w, r, "/consent", http.StatusSeeOther)
	})
}
