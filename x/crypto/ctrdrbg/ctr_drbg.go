// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package ctrdrbg implements the NIST SP 800-90A Rev. 1 CTR_DRBG
// mechanism using the block-cipher derivation function (Block_Cipher_df),
// restricted to AES in counter mode. It supports only the subset of the
// standard this module's callers need: single-shot instantiation from
// caller-supplied entropy, nonce, and personalization string; generation
// without additional input; and no reseeding (counter-based or
// time-based). Prediction resistance is not implemented.
//
// The derivation function and update function below follow NIST SP
// 800-90A Rev. 1 §10.3.2 (Block_Cipher_df) and §10.2.1.2 (CTR_DRBG
// Update) exactly, so that instantiating with a published CAVP test
// vector reproduces its documented output.
package ctrdrbg

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// ErrInvalidKeySize is returned when a key length other than 16 or 32
// bytes (AES-128 or AES-256) is requested.
var ErrInvalidKeySize = errors.New("ctrdrbg: key size must be 16 or 32 bytes (AES-128 or AES-256)")

// ErrInstantiationFailed wraps a failure constructing the underlying
// block cipher during instantiation.
var ErrInstantiationFailed = errors.New("ctrdrbg: instantiation failed")

const (
	outLen = aes.BlockSize // 16 bytes; CTR_DRBG's "outlen" for AES
)

// DRBG is a single NIST SP 800-90A CTR_DRBG (with derivation function)
// instance. It is not safe for concurrent use; callers that need
// concurrent generation should instantiate one DRBG per goroutine.
type DRBG struct {
	keyLen int
	block  cipher.Block
	key    []byte
	v      [outLen]byte
}

// seedLen returns the CTR_DRBG "seedlen" (key length + outlen) for the
// given AES key length.
func seedLen(keyLen int) int {
	return keyLen + outLen
}

// New instantiates a CTR_DRBG with derivation function per NIST SP
// 800-90A Rev. 1 §10.2.1.3.2. keyLen selects AES-128 (16) or AES-256
// (32). seedMaterial is entropy_input || nonce || personalization_string
// concatenated by the caller; it may be of any non-zero length, since
// Block_Cipher_df accepts variable-length input.
func New(keyLen int, seedMaterial []byte) (*DRBG, error) {
	if keyLen != 16 && keyLen != 32 {
		return nil, ErrInvalidKeySize
	}

	d := &DRBG{keyLen: keyLen}

	derived, err := blockCipherDF(keyLen, seedMaterial, seedLen(keyLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInstantiationFailed, err)
	}
	defer zero(derived)

	// Key = 0^keylen, V = 0^outlen, then CTR_DRBG_Update(derived, Key, V).
	key := make([]byte, keyLen)
	var v [outLen]byte
	key, v, err = d.update(key, v, derived)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInstantiationFailed, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		zero(key)
		return nil, fmt.Errorf("%w: %v", ErrInstantiationFailed, err)
	}

	d.block = block
	d.key = key
	d.v = v
	return d, nil
}

// Generate writes len(out) pseudorandom bytes to out, per NIST SP
// 800-90A Rev. 1 §10.2.1.5.2, with additional_input always absent (the
// backtracking-resistance update afterward uses an all-zero
// provided_data, per the standard).
func (d *DRBG) Generate(out []byte) error {
	if d.block == nil {
		return errors.New("ctrdrbg: generate on uninstantiated or uninstantiated DRBG")
	}

	n := len(out)
	produced := 0
	var blockBuf [outLen]byte
	for produced < n {
		incrementCounter(&d.v)
		d.block.Encrypt(blockBuf[:], d.v[:])
		copied := copy(out[produced:], blockBuf[:])
		produced += copied
	}
	zero(blockBuf[:])

	zeroInput := make([]byte, seedLen(d.keyLen))
	defer zero(zeroInput)
	key, v, err := d.update(d.key, d.v, zeroInput)
	if err != nil {
		return fmt.Errorf("ctrdrbg: post-generate update failed: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("ctrdrbg: post-generate rekey failed: %w", err)
	}
	zero(d.key)
	d.key = key
	d.v = v
	d.block = block
	return nil
}

// Uninstantiate zeroizes and releases the DRBG's internal state. The
// DRBG must not be used after calling Uninstantiate.
func (d *DRBG) Uninstantiate() {
	zero(d.key)
	d.key = nil
	zero(d.v[:])
	d.block = nil
}

// update implements CTR_DRBG_Update (NIST SP 800-90A Rev. 1 §10.2.1.2)
// for AES in counter mode: it derives a new (Key, V) pair by encrypting
// successive increments of V under the current key, XORing the result
// with providedData (which must be exactly seedLen(d.keyLen) bytes),
// and splitting the output into a new key and V.
func (d *DRBG) update(key []byte, v [outLen]byte, providedData []byte) ([]byte, [outLen]byte, error) {
	sl := seedLen(len(key))
	if len(providedData) != sl {
		return nil, [outLen]byte{}, fmt.Errorf("ctrdrbg: provided_data must be %d bytes, got %d", sl, len(providedData))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, [outLen]byte{}, err
	}

	temp := make([]byte, 0, sl+outLen)
	cur := v
	var blockBuf [outLen]byte
	for len(temp) < sl {
		incrementCounter(&cur)
		block.Encrypt(blockBuf[:], cur[:])
		temp = append(temp, blockBuf[:]...)
	}
	zero(blockBuf[:])
	temp = temp[:sl]

	for i := range temp {
		temp[i] ^= providedData[i]
	}

	newKey := make([]byte, len(key))
	copy(newKey, temp[:len(key)])
	var newV [outLen]byte
	copy(newV[:], temp[len(key):])
	zero(temp)

	return newKey, newV, nil
}

// incrementCounter increments v, interpreted as a big-endian 128-bit
// unsigned integer, by one, wrapping on overflow.
func incrementCounter(v *[outLen]byte) {
	for i := len(v) - 1; i >= 0; i-- {
		v[i]++
		if v[i] != 0 {
			return
		}
	}
}

// zero overwrites b with zero bytes in place. It is used to scrub
// sensitive intermediate buffers (derived seed material, keys, counter
// state) before they are released, per the zeroization discipline
// described by this module's resource model.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
