// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
)

// preseedKeyBits is the bit length of the default preseed verification
// key pair. RSA-2048 is the reference construction; any key pair whose
// public half can be DER-encoded as a SubjectPublicKeyInfo is an
// acceptable substitute, supplied directly to SeedCalc.
const preseedKeyBits = 2048

// PreseedValue draws len bytes for GeneratorType t from a one-shot DRBG
// seeded with fresh system entropy: the deterministic output of an
// ephemeral DRBG instantiated from randomness that is never reused.
func PreseedValue(t GeneratorType) ([]byte, error) {
	seedLen, err := SeedLen(t)
	if err != nil {
		return nil, err
	}

	drbg, err := InstantiateFresh(t)
	if err != nil {
		return nil, err
	}
	defer drbg.Uninstantiate()

	return drbg.Generate(seedLen)
}

// PreseedKey generates a default asymmetric key pair suitable for
// signing a SeedDescriptor built around a preseed: RSA-2048. This is a
// convenience; callers may supply any other key pair whose public key
// marshals as a SubjectPublicKeyInfo.
func PreseedKey() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, preseedKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: generating preseed key: %v", ErrCryptoFailure, err)
	}
	return key, nil
}

// SeedCalc deterministically derives the seed_len(t)-byte seed for
// GeneratorType t from preseed (used as entropy||nonce) and the
// DER-encoded SubjectPublicKeyInfo of verificationKey (used as
// personalization string). Identical inputs always yield an identical
// seed: this is the contract an auditor relies on to reproduce the
// generator behind any published seed descriptor.
func SeedCalc(t GeneratorType, preseed []byte, verificationKey any) ([]byte, error) {
	seedLen, err := SeedLen(t)
	if err != nil {
		return nil, err
	}
	if len(preseed) != seedLen {
		return nil, fmt.Errorf("%w: preseed must be %d bytes, got %d", ErrInvalidParameter, seedLen, len(preseed))
	}
	if verificationKey == nil {
		return nil, fmt.Errorf("%w: verification key is required", ErrInvalidParameter)
	}

	drbg, err := Instantiate(t, preseed, verificationKey)
	if err != nil {
		return nil, err
	}
	defer drbg.Uninstantiate()

	return drbg.Generate(seedLen)
}
