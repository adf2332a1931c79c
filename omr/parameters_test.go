package omr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewParametersFromLiteralClueCountBound checks the corrected
// 4*ClueCount <= t_m guard: a ClueCount in (t_m/4, t_m/2) must be rejected
// with an error, not accepted and left to panic inside buildLUT2Table's
// out-of-range slice write, and the boundary value 4*ClueCount == t_m must
// be accepted.
func TestNewParametersFromLiteralClueCountBound(t *testing.T) {
	base := ExampleParametersFast

	t.Run("rejected just past the old, wrong bound", func(t *testing.T) {
		lit := base
		lit.IntermediateLogT = 5 // t_m = 32
		lit.ClueCount = 10       // 2*10=20 < 32 (old check passed) but 4*10=40 > 32

		_, err := NewParametersFromLiteral(lit)
		require.Error(t, err)
	})

	t.Run("accepted at the exact boundary", func(t *testing.T) {
		lit := base
		lit.IntermediateLogT = 5 // t_m = 32
		lit.ClueCount = 8        // 4*8 = 32 == t_m

		require.NotPanics(t, func() {
			params, err := NewParametersFromLiteral(lit)
			require.NoError(t, err)
			require.NotNil(t, params.lut2)
		})
	})

	t.Run("rejected one past the boundary", func(t *testing.T) {
		lit := base
		lit.IntermediateLogT = 5 // t_m = 32
		lit.ClueCount = 9        // 4*9 = 36 > 32

		_, err := NewParametersFromLiteral(lit)
		require.Error(t, err)
	})
}
