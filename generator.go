// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import "fmt"

// ContactIdentifier is a single RFC 4122 version-4 UUID emitted by a
// Generator: 16 raw bytes with the variant and version bits forced.
type ContactIdentifier [16]byte

// String renders the identifier in canonical 8-4-4-4-12 hex form.
func (id ContactIdentifier) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x",
		id[0:4], id[4:6], id[6:8], id[8:10], id[10:16])
}

// Generator draws a bounded, deterministic stream of ContactIdentifier
// values from an owned DRBG. A Generator exclusively owns its DRBG:
// Uninstantiate destroys both.
type Generator struct {
	genType GeneratorType
	drbg    *DRBG
}

// NewGenerator constructs a Generator of type t around drbg, taking
// ownership of drbg. drbg must have been instantiated for the same
// GeneratorType t.
func NewGenerator(t GeneratorType, drbg *DRBG) (*Generator, error) {
	if _, err := lookupGenType(t); err != nil {
		return nil, err
	}
	if drbg == nil {
		return nil, fmt.Errorf("%w: nil drbg", ErrInvalidParameter)
	}
	return &Generator{genType: t, drbg: drbg}, nil
}

// Iterate draws exactly 16 bytes from the underlying DRBG and returns
// them as a ContactIdentifier with version/variant bits forced to RFC
// 4122 version 4. On DRBG failure or exhaustion the generator's DRBG
// becomes permanently invalid and every subsequent Iterate fails. A
// generator of type t successfully emits at most MaxIterations(t)
// identifiers.
func (g *Generator) Iterate() (ContactIdentifier, error) {
	raw, err := g.drbg.Generate(16)
	if err != nil {
		return ContactIdentifier{}, err
	}

	var id ContactIdentifier
	copy(id[:], raw)
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id, nil
}

// Invalidate permanently disables the generator's underlying DRBG.
func (g *Generator) Invalidate() {
	g.drbg.Invalidate()
}

// Uninstantiate releases the generator's owned DRBG.
func (g *Generator) Uninstantiate() {
	g.drbg.Uninstantiate()
}
