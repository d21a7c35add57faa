package sha2

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
)

func init() {
	solver.RegisterHint(GetHints()...)
}

// GetHints returns all hint functions used in the package.
func GetHints() []solver.Hint {
	return []solver.Hint{
		XorHint,
		AndHint,
		SplitHint,
		Word32Hint,
	}
}

// XorHint computes the bitwise XOR of its two inputs.
func XorHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 || len(outputs) != 1 {
		return errors.New("expecting two inputs and one output")
	}
	outputs[0].Xor(inputs[0], inputs[1])
	return nil
}

// AndHint computes the bitwise AND of its two inputs.
func AndHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 || len(outputs) != 1 {
		return errors.New("expecting two inputs and one output")
	}
	outputs[0].And(inputs[0], inputs[1])
	return nil
}

// SplitHint splits a byte at the bit position given by the first input: the
// outputs are the low slice and the high slice.
func SplitHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 || len(outputs) != 2 {
		return errors.New("expecting two inputs and two outputs")
	}
	if !inputs[0].IsUint64() {
		return errors.New("split position must be uint64")
	}
	s := uint(inputs[0].Uint64())
	mask := new(big.Int).Lsh(big.NewInt(1), s)
	mask.Sub(mask, big.NewInt(1))
	outputs[0].And(inputs[1], mask)
	outputs[1].Rsh(inputs[1], s)
	return nil
}

// Word32Hint decomposes a word sum into four bytes, least significant first,
// and the carry above 2^32.
func Word32Hint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 1 || len(outputs) != 5 {
		return errors.New("expecting one input and five outputs")
	}
	v := new(big.Int).Set(inputs[0])
	mask := big.NewInt(0xff)
	for i := 0; i < 4; i++ {
		outputs[i].And(v, mask)
		v.Rsh(v, 8)
	}
	outputs[4].Set(v)
	return nil
}
