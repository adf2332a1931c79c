package omr

// solveSystemMod solves A*x ≡ B (mod p) by Gauss-Jordan elimination,
// reducing A and B in place. A has len(B) rows and m columns (m <= len(B),
// the overdetermined case the payload digest always produces); the extra
// rows beyond the first pivot found per column are left unused once the
// system is fully reduced. Returns ErrSingularMatrix if some column never
// finds an invertible pivot among the remaining rows.
func solveSystemMod(p uint64, A [][]uint64, B []Payload) ([]Payload, error) {

	rows := len(A)
	if rows == 0 {
		return nil, ErrSingularMatrix
	}
	cols := len(A[0])

	used := make([]bool, rows)
	pivotRowOf := make([]int, cols)

	for col := 0; col < cols; col++ {

		sel := -1
		for r := 0; r < rows; r++ {
			if !used[r] && invertibleMod(p, A[r][col]) {
				sel = r
				break
			}
		}
		if sel == -1 {
			return nil, ErrSingularMatrix
		}
		used[sel] = true
		pivotRowOf[col] = sel

		inv := modInverse(p, A[sel][col])
		for c := col; c < cols; c++ {
			A[sel][c] = mulMod(A[sel][c], inv, p)
		}
		B[sel] = B[sel].ScalarMul(inv)

		for r := 0; r < rows; r++ {
			if r == sel {
				continue
			}
			factor := A[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c < cols; c++ {
				A[r][c] = subMod(A[r][c], mulMod(factor, A[sel][c], p), p)
			}
			B[r] = B[r].Sub(B[sel].ScalarMul(factor))
		}
	}

	x := make([]Payload, cols)
	for col := 0; col < cols; col++ {
		x[col] = B[pivotRowOf[col]]
	}

	return x, nil
}

func mulMod(a, b, p uint64) uint64 { return (a % p) * (b % p) % p }

func subMod(a, b, p uint64) uint64 { return (a + p - b%p) % p }

// invertibleMod reports whether v is invertible modulo p, i.e. whether
// gcd(v, p) = 1: for the power-of-two case only odd residues are
// invertible, for a prime any non-zero residue is.
func invertibleMod(p, v uint64) bool {
	a, b := v%p, p
	for b != 0 {
		a, b = b, a%b
	}
	return a == 1
}

// modInverse returns the inverse of v modulo p; v must be invertibleMod(p, v).
// 256 and 257 are served from a precomputed table of p entries each; any
// other modulus falls back to the extended Euclidean algorithm.
func modInverse(p, v uint64) uint64 {
	switch p {
	case 256:
		return invTable256[v]
	case 257:
		return invTable257[v]
	default:
		return extGCDInverse(v, p)
	}
}

var invTable256 = buildInverseTable(256)
var invTable257 = buildInverseTable(257)

func buildInverseTable(p uint64) []uint64 {
	table := make([]uint64, p)
	for v := uint64(1); v < p; v++ {
		if invertibleMod(p, v) {
			table[v] = extGCDInverse(v, p)
		}
	}
	return table
}

// extGCDInverse returns v^-1 mod p via the extended Euclidean algorithm.
func extGCDInverse(v, p uint64) uint64 {
	a, b := int64(v%p), int64(p)
	oldS, s := int64(1), int64(0)
	for b != 0 {
		q := a / b
		a, b = b, a-q*b
		oldS, s = s, oldS-q*s
	}
	return uint64(((oldS % int64(p)) + int64(p)) % int64(p))
}
