// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import "fmt"

// SignASN1 populates a new SeedReport with publisher, challenge, and
// descriptors (in input order), signs it, and returns the signed
// in-memory object. The caller retains ownership of the result. By
// default the report is signed with SHA-256; pass WithDigest to select
// SHA-384 or SHA-512 instead.
func SignASN1(publisher, challenge string, descriptors []SeedDescriptor, opts ...SignOption) (*SeedReport, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w: at least one descriptor is required", ErrInvalidParameter)
	}

	r := NewSeedReport()
	if err := r.SetFields(publisher, challenge, descriptors); err != nil {
		return nil, err
	}
	if err := reportSign(r, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// SignDER is SignASN1 followed by canonical DER serialization.
func SignDER(publisher, challenge string, descriptors []SeedDescriptor, opts ...SignOption) ([]byte, error) {
	r, err := SignASN1(publisher, challenge, descriptors, opts...)
	if err != nil {
		return nil, err
	}
	return r.marshalDER()
}

// SignPEM is SignDER armoured as PEM under the "CX SEED REPORT" label.
func SignPEM(publisher, challenge string, descriptors []SeedDescriptor, opts ...SignOption) ([]byte, error) {
	der, err := SignDER(publisher, challenge, descriptors, opts...)
	if err != nil {
		return nil, err
	}
	return encodePEM(der), nil
}

// VerifyASN1 verifies ast's signatures and, on success, returns a
// fresh SeedReport with deep-copied preseed bytes, retained public
// keys, and UTF-8 publisher/challenge strings — independent of ast.
func VerifyASN1(ast *SeedReport) (*SeedReport, error) {
	if ast == nil {
		return nil, fmt.Errorf("%w: nil report", ErrInvalidParameter)
	}
	if err := reportVerify(ast); err != nil {
		return nil, err
	}

	descriptors := make([]SeedDescriptor, len(ast.descriptors))
	for i, d := range ast.descriptors {
		preseed := make([]byte, len(d.Preseed))
		copy(preseed, d.Preseed)
		pub, err := d.publicKey()
		if err != nil {
			return nil, err
		}
		descriptors[i] = SeedDescriptor{Type: d.Type, Preseed: preseed, Key: pub}
	}

	return &SeedReport{
		version:     ast.version,
		descriptors: descriptors,
		publisher:   ast.publisher,
		challenge:   ast.challenge,
		signatures:  append([]Signature(nil), ast.signatures...),
	}, nil
}

// VerifyDER decodes der as a SeedReport and verifies it, per VerifyASN1.
func VerifyDER(der []byte) (*SeedReport, error) {
	ast, err := unmarshalSeedReport(der)
	if err != nil {
		return nil, err
	}
	return VerifyASN1(ast)
}

// VerifyPEM extracts the DER payload from PEM-armoured data (label
// "CX SEED REPORT") and verifies it, per VerifyDER.
func VerifyPEM(data []byte) (*SeedReport, error) {
	der, err := decodePEM(data)
	if err != nil {
		return nil, err
	}
	return VerifyDER(der)
}
