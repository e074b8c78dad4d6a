package cryptoutil

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasherKnownDigests(t *testing.T) {
	cases := map[HashAlgorithm]string{
		SHA1:    "a9993e364706816aba3e25717850c26c9cd0d89d",
		SHA256:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		BLAKE2b: "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
	}

	for algorithm, expected := range cases {
		hasher, err := NewHasher(algorithm)
		require.NoError(t, err)
		assert.Equal(t, algorithm, hasher.Algorithm())

		sum, err := hasher.Hash([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, expected, sum, "algorithm %s", algorithm)
	}
}

func TestNewHasherRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewHasher("md4")
	assert.Error(t, err)
}

func TestHashWriter(t *testing.T) {
	hw, err := NewHashWriter(" SHA1 ")
	require.NoError(t, err)

	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", hw.SumHex())

	_, _ = io.Copy(hw, strings.NewReader("a"))
	_, _ = hw.Write([]byte("bc"))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hw.SumHex())
}
