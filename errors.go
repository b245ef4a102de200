// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import "errors"

// Sentinel errors returned by the DRBG driver, the identifier generator,
// the seed pipeline, the ASN.1 model, the signature engine, and the
// report façade. Callers classify a failure with errors.Is; wrapped
// errors (via fmt.Errorf("...: %w", ...)) preserve this identity.
var (
	// ErrInvalidParameter is returned for an unknown GeneratorType, a
	// preseed/entropy/nonce of the wrong length, or a missing/empty
	// required string.
	ErrInvalidParameter = errors.New("cx: invalid parameter")

	// ErrExhausted is returned once a generator has emitted
	// max_iterations identifiers, or a DRBG has hit its generate cap.
	// The generator or DRBG is permanently invalid thereafter.
	ErrExhausted = errors.New("cx: generator exhausted")

	// ErrCryptoFailure is returned when an underlying sign, verify, or
	// key-generation primitive fails.
	ErrCryptoFailure = errors.New("cx: cryptographic primitive failed")

	// ErrDecodeFailure is returned when DER/PEM input is malformed, a
	// required field is absent, or preseedVerificationKey cannot be
	// parsed as a public key.
	ErrDecodeFailure = errors.New("cx: decode failure")

	// ErrVerifyFailure is returned when a per-descriptor signature
	// fails, the signature/descriptor counts are incompatible, or a
	// caller-pinned algorithm identifier does not match.
	ErrVerifyFailure = errors.New("cx: verification failed")

	// ErrResourceFailure is returned when DER encoding of a report or
	// its TBS content fails, or when reading system entropy fails.
	ErrResourceFailure = errors.New("cx: resource failure")

	// ErrPredictionResistance is returned when a caller requests
	// prediction resistance, which this DRBG driver never supports.
	ErrPredictionResistance = errors.New("cx: prediction resistance not supported")
)
