package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

const vectorSecret = "KS72XBTN5PEBGX2IWBMVW44LXHPAQ7L3"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestCommandsAreRegistered(t *testing.T) {
	t.Parallel()
	root := newRootCommand()
	for _, name := range []string{"keygen", "secret", "recovery", "code", "verify", "uri", "migrate", "indexes"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestKeygen(t *testing.T) {
	t.Parallel()
	out, err := run(t, "keygen")
	require.NoError(t, err)

	key, err := secrets.ParseKey(out)
	require.NoError(t, err)
	assert.NoError(t, secrets.ValidateKey(key))
}

func TestSecret(t *testing.T) {
	t.Parallel()
	out, err := run(t, "secret")
	require.NoError(t, err)
	assert.Len(t, out, 32)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, out)

	out, err = run(t, "secret", "--length", "16", "--grouped")
	require.NoError(t, err)
	assert.Contains(t, out, " ")

	_, err = run(t, "secret", "--length", "8")
	assert.ErrorIs(t, err, totp.ErrInvalidSecretLength)
}

func TestRecovery(t *testing.T) {
	t.Parallel()
	out, err := run(t, "recovery", "--count", "3", "--length", "12")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Regexp(t, `^[A-Z0-9]{12}$`, line)
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "period start", args: []string{"--at", "2020-01-01 20:30:00"}, want: "716347"},
		{name: "previous second", args: []string{"--at", "2020-01-01 20:29:59"}, want: "779186"},
		{name: "shifted back", args: []string{"--at", "2020-01-01 20:30:00", "--offset", "-1"}, want: "779186"},
		{name: "next period", args: []string{"--at", "2020-01-01 20:30:31"}, want: "133346"},
		{name: "epoch seconds", args: []string{"--at", "1581300000"}, want: "566278"},
		{name: "lowercase secret", args: []string{"--at", "1581300000", "--secret", strings.ToLower(vectorSecret)}, want: "566278"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := run(t, append([]string{"code", "--secret", vectorSecret}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("secret is required", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "code")
		assert.Error(t, err)
	})

	t.Run("bad algorithm", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "code", "--secret", vectorSecret, "--algorithm", "md5")
		assert.ErrorIs(t, err, totp.ErrUnsupportedAlgorithm)
	})

	t.Run("secret outside the base32 alphabet", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "code", "--secret", "NOT-BASE32-1")
		assert.True(t, validator.IsValidationError(err))
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()
	base := []string{"verify", "--secret", vectorSecret, "--code", "716347"}

	out, err := run(t, append(base, "--at", "2020-01-01 20:30:31")...)
	require.NoError(t, err)
	assert.Equal(t, "valid", out)

	_, err = run(t, append(base, "--at", "2020-01-01 20:30:31", "--window", "0")...)
	assert.ErrorIs(t, err, errInvalidCode)

	_, err = run(t, append(base, "--at", "2020-01-01 20:29:59")...)
	assert.ErrorIs(t, err, errInvalidCode)

	_, err = run(t, "verify", "--secret", vectorSecret, "--code", "7163470", "--at", "2020-01-01 20:30:31")
	assert.ErrorIs(t, err, errInvalidCode)
}

func TestURI(t *testing.T) {
	t.Parallel()
	qr := filepath.Join(t.TempDir(), "qr.png")

	out, err := run(t, "uri",
		"--secret", vectorSecret,
		"--label", "alice@example.com",
		"--issuer", "Acme Inc",
		"--qr", qr,
	)
	require.NoError(t, err)
	assert.Equal(t, "otpauth://totp/Acme%20Inc%3Aalice@example.com?issuer=Acme%20Inc&label=alice%40example.com&secret="+vectorSecret+"&algorithm=SHA1&digits=6", out)

	png, err := os.ReadFile(qr)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = run(t, "uri", "--secret", vectorSecret, "--label", "alice@example.com")
	assert.Error(t, err)
}
