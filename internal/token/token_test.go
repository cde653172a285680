// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walkthewalk/walkthewalk/internal/token"
)

func TestGenerate(t *testing.T) {
	tok, err := token.Generate(32)

	require.NoError(t, err)
	// 32 bytes in unpadded base64url = 43 characters
	assert.Len(t, tok, 43)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), tok)
}

func TestGenerate_DefaultLength(t *testing.T) {
	tok, err := token.Generate(0)

	require.NoError(t, err)
	assert.Len(t, tok, 43)
}

func TestGenerate_CustomLength(t *testing.T) {
	short, err := token.Generate(16)
	require.NoError(t, err)
	long, err := token.Generate(64)
	require.NoError(t, err)

	assert.Greater(t, len(long), len(short))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		tok, err := token.Generate(32)
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup, "generated a duplicate token")
		seen[tok] = struct{}{}
	}
}

func TestHash(t *testing.T) {
	hash := token.Hash("test-token-12345")

	// SHA-256 = 64 hex characters
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), hash)
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, token.Hash("test-token"), token.Hash("test-token"))
}

func TestHash_CaseSensitive(t *testing.T) {
	assert.NotEqual(t, token.Hash("Token"), token.Hash("token"))
}

func TestHash_Avalanche(t *testing.T) {
	a := token.Hash("test-token-a")
	b := token.Hash("test-token-b")

	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	// A single-character input change should flip a large fraction of the
	// output characters.
	assert.Greater(t, diff, len(a)/4)
}

func TestVerify(t *testing.T) {
	pair, err := token.GeneratePair()
	require.NoError(t, err)

	assert.True(t, token.Verify(pair.Token, pair.Hash))
}

func TestVerify_WrongToken(t *testing.T) {
	pair, err := token.GeneratePair()
	require.NoError(t, err)
	other, err := token.Generate(32)
	require.NoError(t, err)

	assert.False(t, token.Verify(other, pair.Hash))
}

func TestVerify_FailsClosed(t *testing.T) {
	pair, err := token.GeneratePair()
	require.NoError(t, err)

	assert.False(t, token.Verify("", pair.Hash))
	assert.False(t, token.Verify(pair.Token, ""))
	assert.False(t, token.Verify(pair.Token, "not-a-valid-hash"))
	assert.False(t, token.Verify(pair.Token, "abcd")) // valid hex, wrong length
}

func TestGeneratePair(t *testing.T) {
	pair, err := token.GeneratePair()

	require.NoError(t, err)
	assert.NotEmpty(t, pair.Token)
	assert.Equal(t, token.Hash(pair.Token), pair.Hash)
}
