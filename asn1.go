// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
)

// pemLabel is the PEM armour label used for DER-encoded seed reports.
const pemLabel = "CX SEED REPORT"

// defaultSeedReportVersion is the SeedReportContent version assumed
// when the wire field is absent (ASN.1 DEFAULT elision) and written by
// NewSeedReport.
const defaultSeedReportVersion = 1

// publicKeyInfo mirrors the unexported SubjectPublicKeyInfo structure
// crypto/x509 builds internally; it is redeclared here because the
// standard library does not export a type suitable for embedding a
// SubjectPublicKeyInfo inside a larger hand-rolled ASN.1 SEQUENCE.
type publicKeyInfo struct {
	Raw       asn1.RawContent
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// Signature is the wire and domain representation of
// `Signature ::= SEQUENCE { signatureAlgorithm AlgorithmIdentifier, signatureValue OCTET STRING }`.
type Signature struct {
	Algorithm pkix.AlgorithmIdentifier
	Value     []byte
}

// seedDescriptorWire is the DER wire shape of SeedDescriptor:
// `SEQUENCE { generatorType INTEGER, preseedValue OCTET STRING, preseedVerificationKey SubjectPublicKeyInfo }`.
type seedDescriptorWire struct {
	GeneratorType int
	PreseedValue  []byte
	PublicKeyInfo publicKeyInfo
}

// SeedDescriptor is the domain representation of a SeedDescriptor: a
// GeneratorType, its preseed, and either a signing key pair (before a
// report is signed) or a verification public key (after decoding a
// signed report). Preseed length must match SeedLen(Type).
type SeedDescriptor struct {
	Type    GeneratorType
	Preseed []byte
	Key     any // crypto.Signer when constructing for signing, crypto.PublicKey once decoded
}

// NewSeedDescriptor validates preseed's length against t's registered
// seed length and returns a SeedDescriptor ready to be added to a
// SeedReport.
func NewSeedDescriptor(t GeneratorType, preseed []byte, key any) (SeedDescriptor, error) {
	seedLen, err := SeedLen(t)
	if err != nil {
		return SeedDescriptor{}, err
	}
	if len(preseed) != seedLen {
		return SeedDescriptor{}, fmt.Errorf("%w: preseed must be %d bytes, got %d", ErrInvalidParameter, seedLen, len(preseed))
	}
	if key == nil {
		return SeedDescriptor{}, fmt.Errorf("%w: key is required", ErrInvalidParameter)
	}

	cp := make([]byte, len(preseed))
	copy(cp, preseed)
	return SeedDescriptor{Type: t, Preseed: cp, Key: key}, nil
}

func (d SeedDescriptor) publicKey() (crypto.PublicKey, error) {
	switch k := d.Key.(type) {
	case crypto.Signer:
		return k.Public(), nil
	default:
		return k, nil
	}
}

func (d SeedDescriptor) toWire() (seedDescriptorWire, error) {
	pub, err := d.publicKey()
	if err != nil {
		return seedDescriptorWire{}, err
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return seedDescriptorWire{}, fmt.Errorf("%w: marshaling preseedVerificationKey: %v", ErrCryptoFailure, err)
	}
	var pki publicKeyInfo
	if _, err := asn1.Unmarshal(der, &pki); err != nil {
		return seedDescriptorWire{}, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	return seedDescriptorWire{
		GeneratorType: int(d.Type),
		PreseedValue:  d.Preseed,
		PublicKeyInfo: pki,
	}, nil
}

func fromWireDescriptor(w seedDescriptorWire) (SeedDescriptor, error) {
	if _, err := lookupGenType(GeneratorType(w.GeneratorType)); err != nil {
		return SeedDescriptor{}, err
	}

	der, err := asn1.Marshal(w.PublicKeyInfo)
	if err != nil {
		return SeedDescriptor{}, fmt.Errorf("%w: re-encoding preseedVerificationKey: %v", ErrDecodeFailure, err)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return SeedDescriptor{}, fmt.Errorf("%w: parsing preseedVerificationKey: %v", ErrDecodeFailure, err)
	}

	preseed := make([]byte, len(w.PreseedValue))
	copy(preseed, w.PreseedValue)

	return SeedDescriptor{
		Type:    GeneratorType(w.GeneratorType),
		Preseed: preseed,
		Key:     pub,
	}, nil
}

// seedReportContentWire is the DER wire shape of SeedReportContent.
type seedReportContentWire struct {
	Version         int `asn1:"optional,default:1"`
	SeedDescriptors []seedDescriptorWire
	PublisherName   string `asn1:"utf8"`
	Challenge       string `asn1:"utf8"`
}

// tbsSeedReportContentWire is the DER wire shape of
// TBSSeedReportContent: the canonical message actually fed to the
// signature primitive. It is never stored; it exists only transiently
// during Sign and Verify.
type tbsSeedReportContentWire struct {
	Content            seedReportContentWire
	SignatureAlgorithm pkix.AlgorithmIdentifier
}

// seedReportWire is the DER wire shape of SeedReport.
type seedReportWire struct {
	Content    seedReportContentWire
	Signatures []Signature
}

// SeedReport is the in-memory model of a seed report: a publisher name
// and challenge, one or more SeedDescriptors, and (once signed) one
// Signature per descriptor. Mutating a signed report discards its
// signatures and cached DER encoding, returning it to the unsigned
// state.
type SeedReport struct {
	version     int
	descriptors []SeedDescriptor
	publisher   string
	challenge   string
	signatures  []Signature
	derCache    []byte
}

// NewSeedReport constructs an empty, unsigned SeedReport with version
// defaulted to 1.
func NewSeedReport() *SeedReport {
	return &SeedReport{version: defaultSeedReportVersion}
}

// SetFields sets the publisher and challenge strings and replaces the
// descriptor list in input order. Any existing signatures and cached
// DER encoding are discarded.
func (r *SeedReport) SetFields(publisher, challenge string, descriptors []SeedDescriptor) error {
	if publisher == "" || challenge == "" {
		return fmt.Errorf("%w: publisher and challenge must be non-empty", ErrInvalidParameter)
	}
	cp := make([]SeedDescriptor, len(descriptors))
	copy(cp, descriptors)
	r.publisher = publisher
	r.challenge = challenge
	r.descriptors = cp
	r.invalidate()
	return nil
}

// AddDescriptor appends d to the report's descriptor list, discarding
// any existing signatures and cached DER encoding.
func (r *SeedReport) AddDescriptor(d SeedDescriptor) {
	r.descriptors = append(r.descriptors, d)
	r.invalidate()
}

func (r *SeedReport) invalidate() {
	r.signatures = nil
	r.derCache = nil
}

// Version returns the report's version field.
func (r *SeedReport) Version() int { return r.version }

// Publisher returns the report's publisher name.
func (r *SeedReport) Publisher() string { return r.publisher }

// Challenge returns the report's challenge string.
func (r *SeedReport) Challenge() string { return r.challenge }

// Descriptors returns the report's descriptor list.
func (r *SeedReport) Descriptors() []SeedDescriptor { return r.descriptors }

// Signatures returns the report's current signature list, one per
// descriptor once signed, or nil if unsigned.
func (r *SeedReport) Signatures() []Signature { return r.signatures }

func (r *SeedReport) toWireContent() (seedReportContentWire, error) {
	if len(r.descriptors) == 0 {
		return seedReportContentWire{}, fmt.Errorf("%w: report has no descriptors", ErrInvalidParameter)
	}
	wireDescs := make([]seedDescriptorWire, len(r.descriptors))
	for i, d := range r.descriptors {
		w, err := d.toWire()
		if err != nil {
			return seedReportContentWire{}, err
		}
		wireDescs[i] = w
	}
	return seedReportContentWire{
		Version:         r.version,
		SeedDescriptors: wireDescs,
		PublisherName:   r.publisher,
		Challenge:       r.challenge,
	}, nil
}

// marshalDER encodes r's content and current signatures as the DER
// bytes of a SeedReport, returning r.derCache directly if it is still
// valid. The cache is populated here and by unmarshalSeedReport, and
// invalidated by SetFields, AddDescriptor, and reportSign — so it is
// never returned stale. Callers must ensure r.signatures matches
// r.descriptors in cardinality (typically by calling reportSign first).
func (r *SeedReport) marshalDER() ([]byte, error) {
	if r.derCache != nil {
		return r.derCache, nil
	}
	content, err := r.toWireContent()
	if err != nil {
		return nil, err
	}
	der, err := asn1.Marshal(seedReportWire{Content: content, Signatures: r.signatures})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceFailure, err)
	}
	r.derCache = der
	return der, nil
}

// unmarshalSeedReport decodes der into a fresh SeedReport, deep-copying
// preseed bytes and materializing each descriptor's verification key
// from its preseedVerificationKey field.
func unmarshalSeedReport(der []byte) (*SeedReport, error) {
	var wire seedReportWire
	rest, err := asn1.Unmarshal(der, &wire)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing data after SeedReport", ErrDecodeFailure)
	}
	if len(wire.Content.SeedDescriptors) == 0 {
		return nil, fmt.Errorf("%w: report has no descriptors", ErrDecodeFailure)
	}

	version := wire.Content.Version
	if version == 0 {
		version = defaultSeedReportVersion
	}

	descriptors := make([]SeedDescriptor, len(wire.Content.SeedDescriptors))
	for i, w := range wire.Content.SeedDescriptors {
		d, err := fromWireDescriptor(w)
		if err != nil {
			return nil, err
		}
		descriptors[i] = d
	}

	return &SeedReport{
		version:     version,
		descriptors: descriptors,
		publisher:   wire.Content.PublisherName,
		challenge:   wire.Content.Challenge,
		signatures:  wire.Signatures,
		derCache:    der,
	}, nil
}

// encodePEM wraps der in PEM armour under the "CX SEED REPORT" label.
func encodePEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: pemLabel, Bytes: der})
}

// decodePEM extracts the DER payload from a "CX SEED REPORT" PEM block.
func decodePEM(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemLabel {
		return nil, fmt.Errorf("%w: not a %s PEM block", ErrDecodeFailure, pemLabel)
	}
	return block.Bytes, nil
}
