package credentials

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateSalt(t *testing.T) {
	for _, n := range []int{1, 8, 25, 64} {
		salt, err := GenerateSalt(n)
		require.NoError(t, err)
		assert.Len(t, salt, n)
		for _, c := range salt {
			if c < '!' || c > '~' {
				t.Fatalf("salt %q contains %q outside the printable range", salt, c)
			}
		}
		assert.NotContains(t, salt, "\n")
		assert.NotContains(t, salt, " ")
	}
}

func TestGenerateSaltDoesNotRepeat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		salt, err := GenerateSalt(25)
		require.NoError(t, err)
		assert.False(t, seen[salt], "salt repeated after %d draws", i)
		seen[salt] = true
	}
}

func TestGenerateSaltRejectsNonPositiveLength(t *testing.T) {
	_, err := GenerateSalt(0)
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = GenerateSalt(-3)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestHashAndVerify(t *testing.T) {
	salt, err := GenerateSalt(25)
	require.NoError(t, err)

	hash, err := HashPassword("Secr3t!pass", salt, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotContains(t, hash, "Secr3t!pass")

	assert.True(t, VerifyHash("Secr3t!pass"+salt, hash))
	assert.False(t, VerifyHash("Secr3t!pasS"+salt, hash))
	assert.False(t, VerifyHash("Secr3t!pass", hash), "salt must be part of the hashed input")
}

func TestHashEmbedsCost(t *testing.T) {
	hash, err := HashPassword("Abcdef1!", "saltsalt", bcrypt.MinCost+1)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 60), strings.Repeat("s", 13), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = HashPassword(strings.Repeat("a", 60), strings.Repeat("s", 12), bcrypt.MinCost)
	assert.NoError(t, err)
}

func TestVerifyHashMalformed(t *testing.T) {
	assert.False(t, VerifyHash("anything", ""))
	assert.False(t, VerifyHash("anything", "not-a-bcrypt-hash"))
	assert.False(t, VerifyHash("anything", "$2a$10$short"))
}

func TestCheckStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		missing  []string
	}{
		{"compliant", "Abcdef1!", nil},
		{"too short", "Ab1!", []string{"at least 8 characters"}},
		{"no uppercase", "abcdef1!", []string{"an uppercase letter"}},
		{"no lowercase", "ABCDEF1!", []string{"a lowercase letter"}},
		{"no digit", "Abcdefg!", []string{"a digit"}},
		{"no symbol", "Abcdefg1", []string{"a symbol"}},
		{"space counts as symbol", "Abcdef 1", nil},
		{"empty", "", []string{"at least 8 characters", "an uppercase letter", "a lowercase letter", "a digit", "a symbol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStrength(tt.password)
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			var weak *WeakPasswordError
			require.True(t, errors.As(err, &weak), "want WeakPasswordError, got %v", err)
			assert.Equal(t, tt.missing, weak.Missing)
		})
	}
}
