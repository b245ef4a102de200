// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha512" // register SHA-384/SHA-512 with the crypto package
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
)

// oidSHA256WithRSAEncryption, oidSHA384WithRSAEncryption, and
// oidSHA512WithRSAEncryption are the AlgorithmIdentifiers this engine
// assigns to RSA signing keys, one per supported digest.
var (
	oidSHA256WithRSAEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidSHA384WithRSAEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}
	oidSHA512WithRSAEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}
)

// rsaSigOIDByHash maps a supported digest to the AlgorithmIdentifier
// OID this engine assigns it when signing with an RSA key.
var rsaSigOIDByHash = map[crypto.Hash]asn1.ObjectIdentifier{
	crypto.SHA256: oidSHA256WithRSAEncryption,
	crypto.SHA384: oidSHA384WithRSAEncryption,
	crypto.SHA512: oidSHA512WithRSAEncryption,
}

// SignOption configures an optional parameter of a report-signing call.
type SignOption func(*signOptions)

type signOptions struct {
	hash crypto.Hash
}

// WithDigest selects the digest algorithm used to sign a seed report.
// The default, used when no SignOption is supplied, is SHA-256.
// Supported digests are crypto.SHA256, crypto.SHA384, and crypto.SHA512.
func WithDigest(hash crypto.Hash) SignOption {
	return func(o *signOptions) { o.hash = hash }
}

func buildSignOptions(opts ...SignOption) signOptions {
	o := signOptions{hash: crypto.SHA256}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// algorithmFor resolves the X.509 AlgorithmIdentifier this engine uses
// for signer's key type and hash. RSA is the only key type this
// module's reference PreseedKey produces, but any crypto.Signer whose
// public key is RSA is accepted.
func algorithmFor(signer crypto.Signer, hash crypto.Hash) (pkix.AlgorithmIdentifier, error) {
	if _, ok := signer.Public().(*rsa.PublicKey); !ok {
		return pkix.AlgorithmIdentifier{}, fmt.Errorf("%w: unsupported signing key type", ErrInvalidParameter)
	}
	oid, ok := rsaSigOIDByHash[hash]
	if !ok {
		return pkix.AlgorithmIdentifier{}, fmt.Errorf("%w: unsupported digest", ErrInvalidParameter)
	}
	return pkix.AlgorithmIdentifier{Algorithm: oid}, nil
}

// hashForAlgorithm reverses rsaSigOIDByHash, returning the digest
// bound to alg's OID.
func hashForAlgorithm(alg pkix.AlgorithmIdentifier) (crypto.Hash, bool) {
	for hash, oid := range rsaSigOIDByHash {
		if oid.Equal(alg.Algorithm) {
			return hash, true
		}
	}
	return 0, false
}

// digestTBS hashes data with hash, failing if the digest is not linked
// into the binary.
func digestTBS(hash crypto.Hash, data []byte) ([]byte, error) {
	if !hash.Available() {
		return nil, fmt.Errorf("%w: digest not available", ErrInvalidParameter)
	}
	h := hash.New()
	h.Write(data)
	return h.Sum(nil), nil
}

// signTBS signs the canonical DER of a TBSSeedReportContent built from
// content and alg, returning the raw signature value.
func signTBS(signer crypto.Signer, content seedReportContentWire, alg pkix.AlgorithmIdentifier, hash crypto.Hash) ([]byte, error) {
	tbsDER, err := asn1.Marshal(tbsSeedReportContentWire{Content: content, SignatureAlgorithm: alg})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceFailure, err)
	}

	sum, err := digestTBS(hash, tbsDER)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(rand.Reader, sum, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	return sig, nil
}

// verifyTBS reconstructs the TBSSeedReportContent using the algorithm
// recorded in sig (binding the signed algorithm to the transmitted
// one) and verifies sig.Value over its canonical DER with pub. If
// expectedAlg is non-nil, sig.Algorithm must equal it bit-for-bit.
func verifyTBS(pub crypto.PublicKey, content seedReportContentWire, sig Signature, expectedAlg *pkix.AlgorithmIdentifier) error {
	if expectedAlg != nil && !algorithmsEqual(sig.Algorithm, *expectedAlg) {
		return fmt.Errorf("%w: signature algorithm does not match expected algorithm", ErrVerifyFailure)
	}

	hash, ok := hashForAlgorithm(sig.Algorithm)
	if !ok {
		return fmt.Errorf("%w: unsupported signature algorithm", ErrVerifyFailure)
	}

	tbsDER, err := asn1.Marshal(tbsSeedReportContentWire{Content: content, SignatureAlgorithm: sig.Algorithm})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResourceFailure, err)
	}
	sum, err := digestTBS(hash, tbsDER)
	if err != nil {
		return err
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: unsupported verification key type", ErrInvalidParameter)
	}
	if err := rsa.VerifyPKCS1v15(rsaPub, hash, sum, sig.Value); err != nil {
		return fmt.Errorf("%w: %v", ErrVerifyFailure, err)
	}
	return nil
}

func algorithmsEqual(a, b pkix.AlgorithmIdentifier) bool {
	aDER, err1 := asn1.Marshal(a)
	bDER, err2 := asn1.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	if len(aDER) != len(bDER) {
		return false
	}
	for i := range aDER {
		if aDER[i] != bDER[i] {
			return false
		}
	}
	return true
}

// reportSign discards r's existing signatures and cached DER encoding,
// then constructs one fresh Signature per descriptor, in order, each
// signed with that descriptor's key (which must implement
// crypto.Signer) using the digest selected by opts (SHA-256 if none
// given). After every descriptor is signed, the report is immediately
// re-verified; on failure the whole operation fails and r's signatures
// are cleared.
func reportSign(r *SeedReport, opts ...SignOption) error {
	if len(r.descriptors) == 0 {
		return fmt.Errorf("%w: report has no descriptors", ErrInvalidParameter)
	}
	o := buildSignOptions(opts...)

	content, err := r.toWireContent()
	if err != nil {
		return err
	}

	sigs := make([]Signature, len(r.descriptors))
	for i, d := range r.descriptors {
		signer, ok := d.Key.(crypto.Signer)
		if !ok {
			r.invalidate()
			return fmt.Errorf("%w: descriptor %d key is not a signing key", ErrInvalidParameter, i)
		}
		alg, err := algorithmFor(signer, o.hash)
		if err != nil {
			r.invalidate()
			return err
		}
		value, err := signTBS(signer, content, alg, o.hash)
		if err != nil {
			r.invalidate()
			return err
		}
		sigs[i] = Signature{Algorithm: alg, Value: value}
	}

	r.signatures = sigs
	r.derCache = nil
	if err := reportVerify(r); err != nil {
		r.invalidate()
		return err
	}
	return nil
}

// reportVerify requires at least one descriptor and at least as many
// signatures as descriptors (extra trailing signatures, beyond
// len(descriptors), are tolerated and ignored). For each i,
// signatures[i] must verify against descriptors[i].Key over the
// canonical TBS content.
func reportVerify(r *SeedReport) error {
	if len(r.descriptors) == 0 {
		return fmt.Errorf("%w: report has no descriptors", ErrVerifyFailure)
	}
	if len(r.signatures) < len(r.descriptors) {
		return fmt.Errorf("%w: %d signatures for %d descriptors", ErrVerifyFailure, len(r.signatures), len(r.descriptors))
	}

	content, err := r.toWireContent()
	if err != nil {
		return err
	}

	for i, d := range r.descriptors {
		pub, err := d.publicKey()
		if err != nil {
			return err
		}
		if err := verifyTBS(pub, content, r.signatures[i], nil); err != nil {
			return err
		}
	}
	return nil
}

// verifyPublicKeyEqual reports whether two public keys are the same
// key, by comparing their DER-encoded SubjectPublicKeyInfo.
func verifyPublicKeyEqual(a, b crypto.PublicKey) bool {
	aDER, err1 := x509.MarshalPKIXPublicKey(a)
	bDER, err2 := x509.MarshalPKIXPublicKey(b)
	if err1 != nil || err2 != nil || len(aDER) != len(bDER) {
		return false
	}
	for i := range aDER {
		if aDER[i] != bDER[i] {
			return false
		}
	}
	return true
}
