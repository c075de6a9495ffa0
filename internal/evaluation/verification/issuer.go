// Package verification mints the single-use numeric codes stamped onto
// accepted evaluation requests.
package verification

import (
	"fmt"
	"math/rand/v2"
)

// Code bounds: always six digits, never a leading zero.
const (
	codeMin  = 100000
	codeSpan = 900000
)

// Source supplies uniform random integers. math/rand/v2 generators satisfy it;
// tests inject a deterministic source.
type Source interface {
	IntN(n int) int
}

// Issuer produces verification codes. No uniqueness is enforced across
// outstanding codes: a code is only ever looked up together with the owning
// guide and an ACCEPTED status, so a cross-guide collision is harmless and a
// same-guide collision merely makes one of two lookups win (~1e-6 per pair).
type Issuer struct {
	src Source
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithSource injects a random source, typically a seeded generator in tests.
func WithSource(src Source) Option {
	return func(i *Issuer) {
		if src != nil {
			i.src = src
		}
	}
}

// NewIssuer constructs an Issuer backed by the process-wide ChaCha8 generator
// unless a source is injected.
func NewIssuer(opts ...Option) *Issuer {
	issuer := &Issuer{src: defaultSource{}}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer
}

// Issue returns a uniformly random 6-digit code in [100000, 999999].
func (i *Issuer) Issue() string {
	return fmt.Sprintf("%06d", codeMin+i.src.IntN(codeSpan))
}

type defaultSource struct{}

func (defaultSource) IntN(n int) int {
	return rand.IntN(n)
}
