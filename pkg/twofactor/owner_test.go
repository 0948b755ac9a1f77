package twofactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func TestOwner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		owner twofactor.Owner
		valid bool
	}{
		{name: "valid", owner: twofactor.NewOwner("user", "42"), valid: true},
		{name: "uuid id", owner: twofactor.NewOwner("admin", "0b6f1c1e-8d2b-4a51-9a51-1f0d3a7c2b11"), valid: true},
		{name: "zero", owner: twofactor.Owner{}},
		{name: "missing type", owner: twofactor.NewOwner("", "42")},
		{name: "blank id", owner: twofactor.NewOwner("user", "  ")},
		{name: "separator in id", owner: twofactor.NewOwner("user", "4|2")},
		{name: "separator in type", owner: twofactor.NewOwner("us|er", "42")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.owner.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, twofactor.ErrInvalidOwner)
			}
		})
	}

	assert.Equal(t, "user:42", twofactor.NewOwner("user", "42").String())
	assert.True(t, twofactor.Owner{}.IsZero())
	assert.False(t, twofactor.NewOwner("user", "").IsZero())
}

func TestServiceAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	acct, ok := f.svc.Account(alice)
	assert.True(t, ok)
	assert.Equal(t, alice.TwoFactorOwner(), acct.Owner())

	_, ok = f.svc.Account(user{id: ""})
	assert.False(t, ok, "invalid owners are not bound")

	_, ok = f.svc.Account(anonymous{})
	assert.False(t, ok)

	_, ok = f.svc.Account(nil)
	assert.False(t, ok)

	same, ok := f.svc.Account(acct)
	assert.True(t, ok)
	assert.Same(t, acct, same, "accounts are passed through")
}
