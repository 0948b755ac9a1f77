package httpguard

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const minSecretLength = 32

// cookieJar writes HMAC-SHA256 signed cookies. The cookie name is part of the
// signed message, so a value cannot be moved to another cookie.
type cookieJar struct {
	secrets []string
	path    string
	domain  string
	secure  bool
}

func newCookieJar(cfg Config) (*cookieJar, error) {
	secrets := cfg.secrets()
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}
	path := cfg.CookiePath
	if path == "" {
		path = "/"
	}
	return &cookieJar{secrets: secrets, path: path, domain: cfg.CookieDomain, secure: cfg.CookieSecure}, nil
}

func (j *cookieJar) set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    j.sign(name, value),
		Path:     j.path,
		Domain:   j.domain,
		MaxAge:   int(maxAge / time.Second),
		Secure:   j.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j *cookieJar) get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrCookieNotFound
	}
	if err != nil {
		return "", err
	}
	return j.verify(name, c.Value)
}

func (j *cookieJar) delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     j.path,
		Domain:   j.domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   j.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j *cookieJar) sign(name, value string) string {
	return base64.URLEncoding.EncodeToString([]byte(value)) + "|" + mac(j.secrets[0], name, value)
}

func (j *cookieJar) verify(name, signed string) (string, error) {
	encoded, signature, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}
	value := string(raw)

	// Every secret is tried so cookies survive a key rotation.
	for _, secret := range j.secrets {
		if subtle.ConstantTimeCompare([]byte(signature), []byte(mac(secret, name, value))) == 1 {
			return value, nil
		}
	}
	return "", ErrInvalidSignature
}

func mac(secret, name, value string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}
