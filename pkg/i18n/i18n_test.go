package i18n_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
)

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	data, err := i18n.LoadFS(os.DirFS("testdata"), ".")
	require.NoError(t, err)
	tr, err := i18n.NewTranslator(data, "en")
	require.NoError(t, err)
	return tr
}

func TestLoadFSMergesFiles(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	assert.Equal(t, []string{"en", "tr"}, tr.Languages())
	assert.True(t, tr.Has("en", "messages.required"))
	assert.True(t, tr.Has("en", "messages.extra"))
	assert.False(t, tr.Has("tr", "messages.extra"))
}

func TestParseYAMLRejectsScalarLanguage(t *testing.T) {
	t.Parallel()
	_, err := i18n.ParseYAML([]byte("en: hello\n"))
	assert.ErrorIs(t, err, i18n.ErrInvalidTranslationFormat)

	_, err = i18n.ParseYAML([]byte("en: [unclosed\n"))
	assert.ErrorIs(t, err, i18n.ErrFailedToParseYAML)
}

func TestNewTranslatorRequiresDefaultLanguage(t *testing.T) {
	t.Parallel()
	_, err := i18n.NewTranslator(nil, "en")
	assert.ErrorIs(t, err, i18n.ErrNoTranslations)

	_, err = i18n.NewTranslator(map[string]map[string]any{"tr": {}}, "en")
	assert.ErrorIs(t, err, i18n.ErrDefaultLanguageNotLoaded)
}

func TestTranslate(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	tests := []struct {
		name string
		lang string
		key  string
		args []string
		want string
	}{
		{name: "placeholder", lang: "en", key: "greeting", args: []string{"name", "Ada"}, want: "Hello, Ada!"},
		{name: "other language", lang: "tr", key: "greeting", args: []string{"name", "Ada"}, want: "Merhaba, Ada!"},
		{name: "nested key", lang: "tr", key: "messages.required", want: "İki faktörlü kimlik doğrulama gereklidir."},
		{name: "falls back to default language", lang: "tr", key: "messages.remaining", args: []string{"count", "3"}, want: "3 codes left"},
		{name: "unknown language", lang: "de", key: "messages.required", want: "Two-factor authentication is required."},
		{name: "unknown key", lang: "en", key: "messages.nope", want: "messages.nope"},
		{name: "branch is not a message", lang: "en", key: "messages", want: "messages"},
		{name: "missing argument keeps placeholder", lang: "en", key: "greeting", want: "Hello, %{name}!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tr.T(tt.lang, tt.key, tt.args...))
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	tests := []struct {
		accept string
		want   string
	}{
		{"", "en"},
		{"tr", "tr"},
		{"tr-TR,tr;q=0.9,en;q=0.8", "tr"},
		{"en-GB,en;q=0.9", "en"},
		{"de-DE,de;q=0.9", "en"},
		{"de;q=0.9,tr;q=0.5", "tr"},
		{";;;", "en"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Match(tt.accept), "accept %q", tt.accept)
	}
}

func TestMiddlewareStoresLocale(t *testing.T) {
	t.Parallel()
	tr := newTranslator(t)

	var got string
	handler := i18n.Middleware(tr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.GetLocale(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "tr-TR")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tr", got)
	assert.Equal(t, i18n.DefaultLanguage, i18n.GetLocale(context.Background()))
}
