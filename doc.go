// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

// Package cx implements the cryptographic core of a Contact Identifier
// (CX) scheme: a publisher commits to a bounded, deterministic sequence
// of RFC 4122 version-4 UUIDs ("contact identifiers") derived from a
// secret seed, while publishing only a preseed and a preseed
// verification key whose combination reproduces the seed but does not
// reveal it. A signed, structured seed report binds one or more such
// preseed commitments to a publisher identity and a challenge string.
//
// The package is organized around four subsystems: a DRBG driver
// (wrapping x/crypto/ctrdrbg, an NIST SP 800-90A CTR_DRBG with
// derivation function), the ContactIdentifier generator built on it,
// the seed derivation pipeline (PreseedValue, PreseedKey, SeedCalc),
// and the ASN.1 seed report model with its signature engine and
// façade (SignASN1/SignDER/VerifyASN1/VerifyDER).
package cx
