package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenHasher struct{}

func (brokenHasher) Hash(string) (string, error)         { return "", errors.New("no entropy") }
func (brokenHasher) Verify(string, string) (bool, error) { return false, nil }

func TestSeedDirectory(t *testing.T) {
	dir := testDirectory(t)
	assert.Equal(t, 3, dir.Len())

	user, ok, err := dir.Authenticate("  Vendor@Meaw.com ", SentinelPassword)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", user.ID)
	assert.Equal(t, "রহিম উদ্দিন", user.Name)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, testNow, user.CreatedAt)

	_, ok, err = dir.Authenticate("vendor@meaw.com", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeedDirectoryReturnsCopies(t *testing.T) {
	dir := testDirectory(t)
	user, _, _ := dir.Authenticate("admin@meaw.com", SentinelPassword)
	user.Name = "changed"

	again, _, _ := dir.Authenticate("admin@meaw.com", SentinelPassword)
	assert.Equal(t, "অ্যাডমিন ইউজার", again.Name)
}

func TestNewSeedDirectoryErrors(t *testing.T) {
	_, err := NewSeedDirectory(nil, time.Now())
	require.Error(t, err)

	_, err = NewSeedDirectory(brokenHasher{}, time.Now())
	require.Error(t, err)
}
