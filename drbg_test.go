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

// TestInstantiateSplitWrongLengths verifies that mismatched entropy or
// nonce lengths are rejected with ErrInvalidParameter and no DRBG is
// returned.
func TestInstantiateSplitWrongLengths(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	_, err := InstantiateSplit(AES128CTR2048, make([]byte, 15), make([]byte, 8))
	is.ErrorIs(err, ErrInvalidParameter)

	_, err = InstantiateSplit(AES128CTR2048, make([]byte, 16), make([]byte, 7))
	is.ErrorIs(err, ErrInvalidParameter)
}

// TestInstantiateSplitPredictionResistance verifies that requesting
// prediction resistance always fails; this driver never supports it.
func TestInstantiateSplitPredictionResistance(t *testing.T) {
	t.Parallel()

	is := assert.New(t)
	_, err := InstantiateSplit(AES128CTR2048, make([]byte, 16), make([]byte, 8), WithPredictionResistance())
	is.ErrorIs(err, ErrPredictionResistance)
}

// TestGenerateExhaustion verifies that a DRBG permits at most
// MaxIterations(type) generate calls and fails thereafter.
func TestGenerateExhaustion(t *testing.T) {
	t.Parallel()

	require := require.New(t)
	is := assert.New(t)

	entropy := make([]byte, 16)
	nonce := make([]byte, 8)
	d, err := InstantiateSplit(AES128CTR2048, entropy, nonce)
	require.NoError(err)

	// Shrink the cap directly to keep the test fast rather than
	// looping MaxIterations(AES128CTR2048) times.
	d.remaining = 2

	_, err = d.Generate(16)
	is.NoError(err)
	_, err = d.Generate(16)
	is.NoError(err)
	_, err = d.Generate(16)
	is.ErrorIs(err, ErrExhausted)
}

// TestInvalidate verifies that Invalidate permanently disables a DRBG.
func TestInvalidate(t *testing.T) {
	t.Parallel()

	is := assert.New(t)
	d, err := InstantiateSplit(AES128CTR2048, make([]byte, 16), make([]byte, 8))
	is.NoError(err)

	d.Invalidate()
	_, err = d.Generate(16)
	is.ErrorIs(err, ErrExhausted)
}

// TestInstantiateFreshLength verifies that InstantiateFresh succeeds
// and yields a usable DRBG.
func TestInstantiateFreshLength(t *testing.T) {
	t.Parallel()

	is := assert.New(t)
	d, err := InstantiateFresh(AES256CTR2048)
	is.NoError(err)
	out, err := d.Generate(32)
	is.NoError(err)
	is.Len(out, 32)
}
