// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// GeneratorType identifies a fixed DRBG/identifier-generator
// parameterization. Values outside the registered set are invalid.
type GeneratorType uint32

const (
	// AES128CTR2048 is AES-128 CTR_DRBG with derivation function,
	// entropy length 16, nonce length 8, 2048 maximum iterations.
	AES128CTR2048 GeneratorType = 1

	// AES256CTR2048 is AES-256 CTR_DRBG with derivation function,
	// entropy length 32, nonce length 16, 2048 maximum iterations.
	AES256CTR2048 GeneratorType = 2
)

// genTypeInfo holds the fixed parameters associated with a GeneratorType.
type genTypeInfo struct {
	strengthBits  int
	entropyLen    int
	nonceLen      int
	maxIterations int
}

var genTypeRegistry = map[GeneratorType]genTypeInfo{
	AES128CTR2048: {strengthBits: 128, entropyLen: 16, nonceLen: 8, maxIterations: 2048},
	AES256CTR2048: {strengthBits: 256, entropyLen: 32, nonceLen: 16, maxIterations: 2048},
}

func lookupGenType(t GeneratorType) (genTypeInfo, error) {
	info, ok := genTypeRegistry[t]
	if !ok {
		return genTypeInfo{}, fmt.Errorf("%w: unknown generator type %d", ErrInvalidParameter, t)
	}
	return info, nil
}

// EntropyLen returns the required entropy-input length, in bytes, for t.
func EntropyLen(t GeneratorType) (int, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return 0, err
	}
	return info.entropyLen, nil
}

// NonceLen returns the required nonce length, in bytes, for t.
func NonceLen(t GeneratorType) (int, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return 0, err
	}
	return info.nonceLen, nil
}

// SeedLen returns the seed length (entropy length + nonce length), in
// bytes, for t. A seed of this length is the unit consumed by
// instantiate_split and produced by preseed_value and seedcalc.
func SeedLen(t GeneratorType) (int, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return 0, err
	}
	return sumPositive(info.entropyLen, info.nonceLen), nil
}

// MaxIterations returns the maximum number of identifiers a generator of
// type t may successfully emit before becoming permanently exhausted.
func MaxIterations(t GeneratorType) (int, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return 0, err
	}
	return info.maxIterations, nil
}

// StrengthBits returns the nominal security strength, in bits, of t.
func StrengthBits(t GeneratorType) (int, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return 0, err
	}
	return info.strengthBits, nil
}

// sumPositive adds two non-negative integers of any integer type,
// returning the result as an int. Used by SeedLen to combine the
// registry's entropy and nonce lengths regardless of their declared
// width.
func sumPositive[T constraints.Integer](a, b T) int {
	return int(a) + int(b)
}
