package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/password"
)

// cheap parameters keep the suite fast.
var testParams = password.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestArgon2_HashAndVerify(t *testing.T) {
	h := password.NewArgon2(testParams)

	encoded, err := h.Hash("Secret12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, encoded, "Secret12")

	ok, err := h.Verify("Secret12", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("secret12", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_RejectsDistinctPasswords(t *testing.T) {
	bcrypt, err := password.New(password.Bcrypt, 4)
	require.NoError(t, err)
	hashers := map[string]password.Hasher{
		"argon2id": password.NewArgon2(testParams),
		"bcrypt":   bcrypt,
	}
	samples := []string{
		"Secret12",
		"secret12",
		"NewPass99",
		"Correct-Horse-Battery-9",
		"Zz9",
		"motdepasse-très-long-avec-accents-é",
		"12345678",
		" Secret12",
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			hashes := make([]string, len(samples))
			for i, p := range samples {
				hashes[i], err = h.Hash(p)
				require.NoError(t, err)
			}
			for i, p := range samples {
				for j, encoded := range hashes {
					ok, err := h.Verify(p, encoded)
					require.NoError(t, err)
					assert.Equal(t, i == j, ok, "verify(%q, hash(%q))", p, samples[j])
				}
			}
		})
	}
}

func TestArgon2_SaltsDiffer(t *testing.T) {
	h := password.NewArgon2(testParams)
	a, err := h.Hash("Secret12")
	require.NoError(t, err)
	b, err := h.Hash("Secret12")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	h, err := password.New(password.Bcrypt, 4)
	require.NoError(t, err)

	encoded, err := h.Hash("Secret12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$2a$04$"))

	ok, err := h.Verify("Secret12", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("Wrong123", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDispatchesOnPrefix(t *testing.T) {
	bc, err := password.New(password.Bcrypt, 4)
	require.NoError(t, err)
	ar := password.NewArgon2(testParams)

	bcHash, err := bc.Hash("Secret12")
	require.NoError(t, err)
	arHash, err := ar.Hash("Secret12")
	require.NoError(t, err)

	ok, err := ar.Verify("Secret12", bcHash)
	require.NoError(t, err)
	assert.True(t, ok, "argon2 hasher must verify bcrypt hashes")

	ok, err = bc.Verify("Secret12", arHash)
	require.NoError(t, err)
	assert.True(t, ok, "bcrypt hasher must verify argon2 hashes")
}

func TestVerifyMalformed(t *testing.T) {
	h := password.NewArgon2(testParams)
	for _, encoded := range []string{"", "plaintext", "$argon2id$v=19$broken", "$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA"} {
		ok, err := h.Verify("Secret12", encoded)
		assert.False(t, ok, encoded)
		assert.ErrorIs(t, err, password.ErrMalformedHash, encoded)
	}
}

func TestNew(t *testing.T) {
	_, err := password.New("md5", 10)
	assert.Error(t, err)

	_, err = password.New(password.Bcrypt, 2)
	assert.Error(t, err)

	h, err := password.New("", 0)
	require.NoError(t, err)
	assert.NotNil(t, h)
}
