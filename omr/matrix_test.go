package omr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func payloadOf(p uint64, v uint64) Payload {
	pl := NewPayload(p)
	for i := range pl.Values {
		pl.Values[i] = v % p
	}
	return pl
}

// TestSolveSystemMod tests the Gauss-Jordan solver against a
// hand-constructed, overdetermined system with a known solution, for both
// the power-of-two and the prime pivot rule.
func TestSolveSystemMod(t *testing.T) {
	for _, p := range []uint64{256, 257} {
		t.Run(testStringModulus(p), func(t *testing.T) {

			// x0=3, x1=5 mod p; three equations for two unknowns.
			A := [][]uint64{
				{1, 1},
				{1, 3},
				{2, 1},
			}
			B := []Payload{
				payloadOf(p, (3+5)%p),
				payloadOf(p, (3+15)%p),
				payloadOf(p, (6+5)%p),
			}

			x, err := solveSystemMod(p, A, B)
			require.NoError(t, err)
			require.True(t, x[0].Equal(payloadOf(p, 3)))
			require.True(t, x[1].Equal(payloadOf(p, 5)))
		})
	}
}

// TestSolveSystemModSingular checks that a column with no invertible pivot
// is reported as a singular matrix rather than silently mis-solved.
func TestSolveSystemModSingular(t *testing.T) {
	p := uint64(256)

	A := [][]uint64{
		{2, 1},
		{4, 1},
	}
	B := []Payload{
		payloadOf(p, 1),
		payloadOf(p, 1),
	}

	_, err := solveSystemMod(p, A, B)
	require.ErrorIs(t, err, ErrSingularMatrix)
}

func testStringModulus(p uint64) string {
	if p == 256 {
		return "p=256(pow2)"
	}
	return "p=257(prime)"
}
