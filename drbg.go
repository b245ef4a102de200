// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package cx

import (
	"crypto/rand"
	"crypto/x509"
	"fmt"

	"github.com/nhsx/libcx/x/crypto/ctrdrbg"
)

// DRBG wraps a NIST SP 800-90A CTR_DRBG (with derivation function) for
// a single GeneratorType, enforcing the type's generate cap and
// permanently invalidating itself on any underlying failure. A DRBG is
// single-threaded per instance: it must not be shared across
// goroutines without external synchronization.
type DRBG struct {
	genType   GeneratorType
	inner     *ctrdrbg.DRBG
	remaining int
}

// Option configures an optional parameter of an instantiation call.
type Option func(*instantiateOptions)

type instantiateOptions struct {
	personalization     []byte
	predictionResistant bool
}

// WithPersonalization supplies an explicit personalization string to
// Instantiate/InstantiateSplit, overriding the key-derived
// personalization that Instantiate computes from its key argument.
func WithPersonalization(p []byte) Option {
	return func(o *instantiateOptions) { o.personalization = p }
}

// WithPredictionResistance requests prediction resistance. This driver
// never supports it; supplying this option always causes instantiation
// to fail with ErrPredictionResistance.
func WithPredictionResistance() Option {
	return func(o *instantiateOptions) { o.predictionResistant = true }
}

func buildInstantiateOptions(opts ...Option) instantiateOptions {
	var o instantiateOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func keyLenFor(t GeneratorType) (int, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return 0, err
	}
	switch info.strengthBits {
	case 128:
		return 16, nil
	case 256:
		return 32, nil
	default:
		return 0, fmt.Errorf("%w: unsupported strength %d for type %d", ErrInvalidParameter, info.strengthBits, t)
	}
}

// InstantiateSplit constructs a DRBG of type t from caller-supplied
// entropy and nonce, whose lengths must exactly match the type's
// registered entropy and nonce lengths, plus an optional
// personalization string. The caller's entropy and nonce slices are
// not modified; this function's own working copy of
// entropy||nonce||personalization is zeroized before it returns.
func InstantiateSplit(t GeneratorType, entropy, nonce []byte, opts ...Option) (*DRBG, error) {
	o := buildInstantiateOptions(opts...)
	if o.predictionResistant {
		return nil, ErrPredictionResistance
	}

	info, err := lookupGenType(t)
	if err != nil {
		return nil, err
	}
	if len(entropy) != info.entropyLen {
		return nil, fmt.Errorf("%w: entropy must be %d bytes, got %d", ErrInvalidParameter, info.entropyLen, len(entropy))
	}
	if len(nonce) != info.nonceLen {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrInvalidParameter, info.nonceLen, len(nonce))
	}

	keyLen, err := keyLenFor(t)
	if err != nil {
		return nil, err
	}

	seedMaterial := make([]byte, 0, len(entropy)+len(nonce)+len(o.personalization))
	seedMaterial = append(seedMaterial, entropy...)
	seedMaterial = append(seedMaterial, nonce...)
	seedMaterial = append(seedMaterial, o.personalization...)
	defer zeroBytes(seedMaterial)

	inner, err := ctrdrbg.New(keyLen, seedMaterial)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	return &DRBG{genType: t, inner: inner, remaining: info.maxIterations}, nil
}

// Instantiate constructs a DRBG of type t from input, which must be
// exactly entropy_len+nonce_len bytes of entropy followed by nonce. If
// key is non-nil, the personalization string is the DER encoding of
// key's SubjectPublicKeyInfo; otherwise the personalization string is
// empty.
func Instantiate(t GeneratorType, input []byte, key any, opts ...Option) (*DRBG, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return nil, err
	}
	want := info.entropyLen + info.nonceLen
	if len(input) != want {
		return nil, fmt.Errorf("%w: input must be %d bytes, got %d", ErrInvalidParameter, want, len(input))
	}

	var personalization []byte
	if key != nil {
		der, err := x509.MarshalPKIXPublicKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling personalization key: %v", ErrInvalidParameter, err)
		}
		personalization = der
	}

	allOpts := append([]Option{WithPersonalization(personalization)}, opts...)
	entropy := input[:info.entropyLen]
	nonce := input[info.entropyLen:]
	return InstantiateSplit(t, entropy, nonce, allOpts...)
}

// InstantiateFresh draws entropy_len+nonce_len bytes from the system
// cryptographic RNG and instantiates a DRBG of type t with no
// personalization string. The drawn randomness buffer is zeroized on
// every exit path.
func InstantiateFresh(t GeneratorType) (*DRBG, error) {
	info, err := lookupGenType(t)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, info.entropyLen+info.nonceLen)
	defer zeroBytes(buf)

	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: reading system entropy: %v", ErrResourceFailure, err)
	}

	return Instantiate(t, buf, nil)
}

// Generate draws outLen bytes from d. Each call decrements d's
// remaining iteration count; once exhausted, Generate always fails
// with ErrExhausted. If the underlying DRBG primitive fails, d is
// permanently invalidated so that future calls also fail, preventing
// silently divergent output.
func (d *DRBG) Generate(outLen int) ([]byte, error) {
	if d.inner == nil || d.remaining <= 0 {
		return nil, ErrExhausted
	}

	out := make([]byte, outLen)
	if err := d.inner.Generate(out); err != nil {
		d.Invalidate()
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	d.remaining--
	return out, nil
}

// Invalidate permanently disables d: subsequent Generate calls fail.
func (d *DRBG) Invalidate() {
	d.remaining = 0
}

// Uninstantiate releases d's resources, zeroizing its internal state.
// d must not be used after calling Uninstantiate.
func (d *DRBG) Uninstantiate() {
	if d.inner != nil {
		d.inner.Uninstantiate()
		d.inner = nil
	}
	d.remaining = 0
}

// zeroBytes overwrites b with zero bytes in place.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
