package httpguard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/httpguard"
)

const (
	vectorSecret = "KS72XBTN5PEBGX2IWBMVW44LXHPAQ7L3"
	vectorCode   = "716347"
	cookieSecret = "0123456789abcdef0123456789abcdef"
)

var epoch = time.Date(2020, time.January, 1, 20, 30, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type user struct {
	id    string
	email string
}

func (u user) TwoFactorOwner() twofactor.Owner { return twofactor.NewOwner("user", u.id) }
func (u user) TwoFactorLabel() string          { return u.email }

var (
	alice = user{id: "1", email: "alice@example.com"}
	bob   = user{id: "2", email: "bob@example.com"}
)

// currentUser reads the principal from the X-User header.
func currentUser(r *http.Request) (twofactor.Authenticatable, bool) {
	switch r.Header.Get("X-User") {
	case alice.id:
		return alice, true
	case bob.id:
		return bob, true
	}
	return nil, false
}

type fixture struct {
	svc     *twofactor.Service
	store   *twofactor.MemoryStore
	clock   *clock
	handler *httpguard.Handler
	routes  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := twofactor.DefaultConfig()
	cfg.AppName = "Acme"
	cfg.SafeDevicesEnabled = true

	f := &fixture{store: twofactor.NewMemoryStore(), clock: &clock{now: epoch}}
	svc, err := twofactor.NewService(f.store, cfg, twofactor.WithClock(f.clock.Now))
	require.NoError(t, err)
	f.svc = svc

	h, err := httpguard.New(svc, httpguard.Config{
		CookieSecrets:   cookieSecret,
		CookiePath:      "/",
		ConfirmedCookie: "2fa_confirmed",
	}, currentUser)
	require.NoError(t, err)
	f.handler = h
	f.routes = h.Handle()
	return f
}

// seed stores an enabled record with the well-known secret.
func (f *fixture) seed(t *testing.T, u user) {
	t.Helper()
	params := f.svc.Config().TOTPParams()
	rec := twofactor.NewRecord(u.TwoFactorOwner(), params, f.clock.Now())
	rec.Flush(params, vectorSecret, f.clock.Now())
	rec.Label = u.TwoFactorLabel()
	rec.Enable(f.clock.Now())
	_, err := rec.GenerateRecoveryCodes(2, 8, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), rec))
}

func (f *fixture) code(t *testing.T, u user) string {
	t.Helper()
	code, err := f.svc.MakeCode(context.Background(), u.TwoFactorOwner(), f.clock.Now(), 0)
	require.NoError(t, err)
	return code
}

type request struct {
	method  string
	path    string
	user    *user
	form    url.Values
	json    map[string]any
	cookies []*http.Cookie
	lang    string
}

func newRequest(t *testing.T, req request) *http.Request {
	t.Helper()
	method := req.method
	if method == "" {
		method = http.MethodPost
	}

	var r *http.Request
	switch {
	case req.json != nil:
		body, err := json.Marshal(req.json)
		require.NoError(t, err)
		r = httptest.NewRequest(method, req.path, strings.NewReader(string(body)))
		r.Header.Set("Content-Type", "application/json")
	default:
		r = httptest.NewRequest(method, req.path, strings.NewReader(req.form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.user != nil {
		r.Header.Set("X-User", req.user.id)
	}
	if req.lang != "" {
		r.Header.Set("Accept-Language", req.lang)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	return r
}

func (f *fixture) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.routes.ServeHTTP(rec, newRequest(t, req))
	return rec
}

func cookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *httpguard.ErrorDetail `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) *httpguard.ErrorDetail {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}
