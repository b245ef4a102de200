// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPreseedValueLength verifies that preseed_value's output length
// always equals the type's registered seed length.
func TestPreseedValueLength(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	for _, gt := range []GeneratorType{AES128CTR2048, AES256CTR2048} {
		want, err := SeedLen(gt)
		is.NoError(err)

		preseed, err := PreseedValue(gt)
		is.NoError(err)
		is.Len(preseed, want)
	}
}

// TestPreseedKeyDefault verifies that the default preseed key is a
// 2048-bit RSA key pair.
func TestPreseedKeyDefault(t *testing.T) {
	t.Parallel()

	is := assert.New(t)
	key, err := PreseedKey()
	is.NoError(err)
	is.Equal(2048, key.N.BitLen())
}

// TestSeedCalcDeterminism verifies that seedcalc is a pure function of
// its inputs: identical (type, preseed, key) always yields an
// identical seed of the registered seed length.
func TestSeedCalcDeterminism(t *testing.T) {
	t.Parallel()

	require := require.New(t)
	is := assert.New(t)

	key, err := PreseedKey()
	require.NoError(err)

	preseed := naturalSeed(24)

	s1, err := SeedCalc(AES128CTR2048, preseed, &key.PublicKey)
	require.NoError(err)
	s2, err := SeedCalc(AES128CTR2048, preseed, &key.PublicKey)
	require.NoError(err)

	is.Equal(s1, s2)
	wantLen, err := SeedLen(AES128CTR2048)
	require.NoError(err)
	is.Len(s1, wantLen)
}

// TestSeedCalcKeyBinding verifies that two distinct verification keys
// over the same preseed produce distinct seeds: the key is part of the
// derivation, not incidental to it.
func TestSeedCalcKeyBinding(t *testing.T) {
	t.Parallel()

	require := require.New(t)
	is := assert.New(t)

	key1, err := PreseedKey()
	require.NoError(err)
	key2, err := PreseedKey()
	require.NoError(err)

	preseed := naturalSeed(24)

	s1, err := SeedCalc(AES128CTR2048, preseed, &key1.PublicKey)
	require.NoError(err)
	s2, err := SeedCalc(AES128CTR2048, preseed, &key2.PublicKey)
	require.NoError(err)

	is.NotEqual(s1, s2)
}

// TestSeedCalcWrongPreseedLength verifies that a preseed of the wrong
// length is rejected.
func TestSeedCalcWrongPreseedLength(t *testing.T) {
	t.Parallel()

	require := require.New(t)
	is := assert.New(t)

	key, err := PreseedKey()
	require.NoError(err)

	_, err = SeedCalc(AES128CTR2048, naturalSeed(23), &key.PublicKey)
	is.ErrorIs(err, ErrInvalidParameter)
}
