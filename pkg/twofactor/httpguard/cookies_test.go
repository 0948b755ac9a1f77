package httpguard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secretA = "0123456789abcdef0123456789abcdef"
	secretB = "fedcba9876543210fedcba9876543210"
)

func TestNewCookieJar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets string
		wantErr error
	}{
		{name: "no secret", secrets: " , ", wantErr: ErrNoSecret},
		{name: "short secret", secrets: secretA + ",short", wantErr: ErrSecretTooShort},
		{name: "single secret", secrets: secretA},
		{name: "rotation list", secrets: secretA + ", " + secretB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			jar, err := newCookieJar(Config{CookieSecrets: tt.secrets})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/", jar.path)
		})
	}
}

func roundTrip(t *testing.T, from *cookieJar, name, value string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	from.set(rec, name, value, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestCookieJarSignsAndVerifies(t *testing.T) {
	t.Parallel()
	jar, err := newCookieJar(Config{CookieSecrets: secretA, CookieSecure: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	jar.set(rec, "device", "token|with|pipes", time.Hour)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.NotContains(t, cookies[0].Value, "token")

	value, err := jar.get(roundTrip(t, jar, "device", "token|with|pipes"), "device")
	require.NoError(t, err)
	assert.Equal(t, "token|with|pipes", value)
}

func TestCookieJarRejects(t *testing.T) {
	t.Parallel()
	jar, err := newCookieJar(Config{CookieSecrets: secretA})
	require.NoError(t, err)
	other, err := newCookieJar(Config{CookieSecrets: secretB})
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := jar.get(httptest.NewRequest(http.MethodGet, "/", nil), "device")
		assert.ErrorIs(t, err, ErrCookieNotFound)
	})

	t.Run("foreign secret", func(t *testing.T) {
		_, err := jar.get(roundTrip(t, other, "device", "token"), "device")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("moved to another name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "other", Value: jar.sign("device", "token")})
		_, err := jar.get(req, "other")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered value", func(t *testing.T) {
		signed := jar.sign("device", "token")
		_, sig, _ := strings.Cut(signed, "|")
		_, err := jar.verify("device", "dG9rZW4y|"+sig)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := jar.verify("device", "no-separator")
		assert.ErrorIs(t, err, ErrInvalidFormat)
		_, err = jar.verify("device", "!!!|sig")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestCookieJarKeyRotation(t *testing.T) {
	t.Parallel()
	old, err := newCookieJar(Config{CookieSecrets: secretA})
	require.NoError(t, err)
	rotated, err := newCookieJar(Config{CookieSecrets: secretB + "," + secretA})
	require.NoError(t, err)

	value, err := rotated.get(roundTrip(t, old, "device", "token"), "device")
	require.NoError(t, err)
	assert.Equal(t, "token", value)

	_, err = old.get(roundTrip(t, rotated, "device", "token"), "device")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCookieJarDelete(t *testing.T) {
	t.Parallel()
	jar, err := newCookieJar(Config{CookieSecrets: secretA, CookiePath: "/auth"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	jar.delete(rec, "device")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, "/auth", cookies[0].Path)
}
