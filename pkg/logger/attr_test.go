package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestOwner(t *testing.T) {
	attr := logger.Owner("user:42")
	require.Equal(t, "owner", attr.Key)
	assert.Equal(t, "user:42", attr.Value.Any())

	assert.True(t, logger.Owner(nil).Equal(slog.Attr{}))
}

func TestDecisionAttrs(t *testing.T) {
	assert.Equal(t, slog.String("outcome", "denied"), logger.Outcome("denied"))
	assert.Equal(t, slog.String("reason", "replayed"), logger.Reason("replayed"))
	assert.Equal(t, slog.String("event_kind", "two_factor_enabled"), logger.EventKind("two_factor_enabled"))
	assert.Equal(t, slog.Int("remaining", 3), logger.Remaining(3))
	assert.Equal(t, slog.String("component", "guard"), logger.Component("guard"))
}

func TestIP(t *testing.T) {
	assert.Equal(t, slog.String("ip", "10.0.0.1"), logger.IP("10.0.0.1"))
	assert.True(t, logger.IP("").Equal(slog.Attr{}))
}

func TestRequestID(t *testing.T) {
	attr := logger.RequestID("abc")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.Any())
}
