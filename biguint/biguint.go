// Package biguint implements unsigned big-integer arithmetic inside a
// circuit, for integers far wider than the native field.
//
// A value is held as a sequence of fixed-width limbs, least significant
// first. Every limb carries an invariant upper bound tracked by the gadget:
// canonical values bound every limb by the configured limb width, and
// arithmetic results track the growth of that bound so that no operation can
// silently wrap the native field. Whenever a bound would become unsafe the
// value is re-normalized through a witnessed canonical decomposition whose
// limbs are all range-checked before use.
//
// Multiplication is schoolbook limb-pair convolution followed by carry
// propagation; modular reduction witnesses quotient and remainder and proves
// a = q*m + r with a most-significant-limb-first comparison establishing
// r < m. All range checks go through a shared [rangecheck.Checker], so the
// caller must finalize that checker once synthesis is complete.
package biguint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

var (
	// ErrValueTooWide is returned when an integer does not fit the declared
	// limb layout.
	ErrValueTooWide = errors.New("biguint: value does not fit limb layout")
	// ErrNegative is returned for negative inputs; limb encodings are
	// unsigned.
	ErrNegative = errors.New("biguint: negative value")
)

// Int is a limb-encoded unsigned integer. Limbs are ordered least
// significant first; every limb is strictly below 2^bits for the bound
// tracked by the owning [Field]. Values returned by Field operations never
// share limb state with their operands.
type Int struct {
	Limbs []frontend.Variable

	bits uint
}

// Decompose splits v into nbLimbs base-2^limbBits limbs, least significant
// first. It fails with [ErrNegative] for negative values and
// [ErrValueTooWide] when v needs more than nbLimbs*limbBits bits.
func Decompose(v *big.Int, nbLimbs int, limbBits uint) ([]*big.Int, error) {
	if v == nil || v.Sign() < 0 {
		return nil, ErrNegative
	}
	if nbLimbs <= 0 {
		return nil, fmt.Errorf("%w: no limbs", ErrValueTooWide)
	}
	if uint(v.BitLen()) > uint(nbLimbs)*limbBits {
		return nil, fmt.Errorf("%w: %d bits > %d limbs of %d bits", ErrValueTooWide, v.BitLen(), nbLimbs, limbBits)
	}
	res := make([]*big.Int, nbLimbs)
	mask := new(big.Int).Lsh(big.NewInt(1), limbBits)
	mask.Sub(mask, big.NewInt(1))
	tmp := new(big.Int).Set(v)
	for i := range res {
		res[i] = new(big.Int).And(tmp, mask)
		tmp.Rsh(tmp, limbBits)
	}
	return res, nil
}

// Compose is the inverse of [Decompose]; it recombines limbs into a single
// integer.
func Compose(limbs []*big.Int, limbBits uint) *big.Int {
	res := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		res.Lsh(res, limbBits)
		res.Add(res, limbs[i])
	}
	return res
}
