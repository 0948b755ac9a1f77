package twofactor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func TestRecoveryCodes(t *testing.T) {
	t.Parallel()
	codes := twofactor.NewRecoveryCodes([]string{"AAAA1111", "BBBB2222", "CCCC3333"})

	assert.Equal(t, 3, codes.Unused())
	assert.Equal(t, 1, codes.FindUnused("BBBB2222"))
	assert.Equal(t, -1, codes.FindUnused("DDDD4444"))
	assert.Equal(t, -1, codes.FindUnused(""))

	require.True(t, codes.MarkUsed("BBBB2222", epoch))
	require.NotNil(t, codes[1].UsedAt)
	assert.Equal(t, epoch, *codes[1].UsedAt)
	assert.Equal(t, 2, codes.Unused())

	assert.False(t, codes.MarkUsed("BBBB2222", epoch.Add(time.Minute)), "codes are single use")
	assert.Equal(t, epoch, *codes[1].UsedAt)
	assert.False(t, codes.MarkUsed("bbbb2222", epoch), "codes are case sensitive")

	require.True(t, codes.MarkUsed("AAAA1111", epoch))
	require.True(t, codes.MarkUsed("CCCC3333", epoch))
	assert.False(t, codes.HasUnused())
	assert.Equal(t, []string{"AAAA1111", "BBBB2222", "CCCC3333"}, codes.Codes())
}

func TestRecoveryCodesDuplicateEntries(t *testing.T) {
	t.Parallel()
	codes := twofactor.NewRecoveryCodes([]string{"SAME0000", "SAME0000"})

	require.True(t, codes.MarkUsed("SAME0000", epoch))
	assert.NotNil(t, codes[0].UsedAt)
	assert.Nil(t, codes[1].UsedAt)

	require.True(t, codes.MarkUsed("SAME0000", epoch))
	assert.False(t, codes.HasUnused())
}

func TestRecoveryCodesCloneIsDeep(t *testing.T) {
	t.Parallel()
	codes := twofactor.NewRecoveryCodes([]string{"AAAA1111"})
	require.True(t, codes.MarkUsed("AAAA1111", epoch))

	clone := codes.Clone()
	*clone[0].UsedAt = epoch.Add(time.Hour)
	clone[0].Code = "CHANGED0"

	assert.Equal(t, epoch, *codes[0].UsedAt)
	assert.Equal(t, "AAAA1111", codes[0].Code)
	assert.Nil(t, twofactor.RecoveryCodes(nil).Clone())
}
