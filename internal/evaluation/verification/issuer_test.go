package verification

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_RangeAndFormat(t *testing.T) {
	issuer := NewIssuer(WithSource(rand.New(rand.NewPCG(1, 2))))

	for range 1000 {
		code := issuer.Issue()
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssue_DeterministicWithInjectedSource(t *testing.T) {
	a := NewIssuer(WithSource(rand.New(rand.NewPCG(7, 7))))
	b := NewIssuer(WithSource(rand.New(rand.NewPCG(7, 7))))

	for range 10 {
		assert.Equal(t, a.Issue(), b.Issue())
	}
}

func TestIssue_BoundaryValues(t *testing.T) {
	assert.Equal(t, "100000", NewIssuer(WithSource(fixedSource(0))).Issue())
	assert.Equal(t, "999999", NewIssuer(WithSource(fixedSource(899999))).Issue())
}

type fixedSource int

func (f fixedSource) IntN(int) int { return int(f) }
