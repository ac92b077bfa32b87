package impl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheapParams keeps the argon2 cost low enough for unit tests.
var cheapParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceWithParams(cheapParams)

	t.Run("produces PHC string", func(t *testing.T) {
		hash, err := ps.Hash("correct horse")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		h1, err := ps.Hash("samepassword")
		require.NoError(t, err)
		h2, err := ps.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("verifies correct password only", func(t *testing.T) {
		hash, err := ps.Hash("correct horse")
		require.NoError(t, err)

		rehash, ok := ps.Verify("correct horse", hash)
		assert.True(t, ok)
		assert.False(t, rehash)

		rehash, ok = ps.Verify("wrong horse", hash)
		assert.False(t, ok)
		assert.False(t, rehash)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := ps.Hash("")
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		for _, bad := range []string{"", "plaintext", "$argon2id$v=19$m=1,t=1$x$y", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"} {
			_, ok := ps.Verify("pw", bad)
			assert.False(t, ok, bad)
		}
	})
}

func TestPasswordRehashOnPolicyChange(t *testing.T) {
	old := NewPasswordServiceWithParams(cheapParams)
	hash, err := old.Hash("hunter2hunter2")
	require.NoError(t, err)

	stronger := cheapParams
	stronger.Time = 2
	cur := NewPasswordServiceWithParams(stronger)

	rehash, ok := cur.Verify("hunter2hunter2", hash)
	assert.True(t, ok)
	assert.True(t, rehash)
}

func TestPasswordVerifiesLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-password"), bcrypt.MinCost)
	require.NoError(t, err)

	ps := NewPasswordServiceWithParams(cheapParams)

	rehash, ok := ps.Verify("legacy-password", string(legacy))
	assert.True(t, ok)
	assert.True(t, rehash, "bcrypt hashes are upgraded on successful login")

	rehash, ok = ps.Verify("nope", string(legacy))
	assert.False(t, ok)
	assert.False(t, rehash)
}
