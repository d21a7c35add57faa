package biguint

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
		NormalizeHint,
		QuoRemHint,
		CarriesHint,
		LessHint,
	}
}

// NormalizeHint computes the canonical limb form of a limb sequence. Inputs
// are the limb width, the number of input limbs and then the limbs
// themselves; outputs are the canonical limbs, least significant first. The
// recombined value must fit the output limbs.
func NormalizeHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) < 2 {
		return errors.New("expecting limb width and limb count")
	}
	if !inputs[0].IsUint64() || !inputs[1].IsUint64() {
		return errors.New("width inputs must be uint64")
	}
	w := uint(inputs[0].Uint64())
	nbIn := int(inputs[1].Int64())
	if len(inputs) != 2+nbIn {
		return errors.New("input length mismatch")
	}
	v := compose(inputs[2:], w)
	if uint(v.BitLen()) > uint(len(outputs))*w {
		return errors.New("value does not fit output limbs")
	}
	mask := new(big.Int).Lsh(big.NewInt(1), w)
	mask.Sub(mask, big.NewInt(1))
	for i := range outputs {
		outputs[i].And(v, mask)
		v.Rsh(v, w)
	}
	return nil
}

// QuoRemHint computes the quotient and remainder of a limb-encoded division.
// Inputs are the limb width, the dividend limb count, the divisor limb count
// and then dividend and divisor limbs; outputs are the quotient limbs
// followed by the remainder limbs, with the quotient length implied by the
// output count.
func QuoRemHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) < 3 {
		return errors.New("expecting limb width and limb counts")
	}
	if !inputs[0].IsUint64() || !inputs[1].IsUint64() || !inputs[2].IsUint64() {
		return errors.New("width inputs must be uint64")
	}
	w := uint(inputs[0].Uint64())
	nbA := int(inputs[1].Int64())
	nbM := int(inputs[2].Int64())
	if len(inputs) != 3+nbA+nbM {
		return errors.New("input length mismatch")
	}
	qLen := len(outputs) - nbM
	if qLen < 1 {
		return errors.New("no room for quotient limbs")
	}
	a := compose(inputs[3:3+nbA], w)
	mod := compose(inputs[3+nbA:], w)
	if mod.Sign() == 0 {
		return errors.New("division by zero")
	}
	q, r := new(big.Int).QuoRem(a, mod, new(big.Int))
	if uint(q.BitLen()) > uint(qLen)*w {
		return errors.New("quotient does not fit output limbs")
	}
	mask := new(big.Int).Lsh(big.NewInt(1), w)
	mask.Sub(mask, big.NewInt(1))
	for i := 0; i < qLen; i++ {
		outputs[i].And(q, mask)
		q.Rsh(q, w)
	}
	for i := 0; i < nbM; i++ {
		outputs[qLen+i].And(r, mask)
		r.Rsh(r, w)
	}
	return nil
}

// CarriesHint computes the signed carry chain certifying that two limb
// sequences encode the same integer. Inputs are the limb width, the chain
// length, the left limb count and then left and right limbs; outputs are the
// carries, negative values encoded modulo the field.
func CarriesHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) < 3 {
		return errors.New("expecting limb width and limb counts")
	}
	if !inputs[0].IsUint64() || !inputs[1].IsUint64() || !inputs[2].IsUint64() {
		return errors.New("width inputs must be uint64")
	}
	w := uint(inputs[0].Uint64())
	n := int(inputs[1].Int64())
	nbL := int(inputs[2].Int64())
	if len(inputs) < 3+nbL {
		return errors.New("input length mismatch")
	}
	if len(outputs) != n {
		return errors.New("expecting one carry per chain step")
	}
	l := inputs[3 : 3+nbL]
	r := inputs[3+nbL:]
	t := new(big.Int)
	prev := new(big.Int)
	for i := 0; i < n; i++ {
		t.Set(prev)
		if i < len(l) {
			t.Add(t, l[i])
		}
		if i < len(r) {
			t.Sub(t, r[i])
		}
		// floor division; an indivisible step yields a carry the circuit
		// equality rejects
		prev.Rsh(t, w)
		outputs[i].Set(prev)
		if outputs[i].Sign() < 0 {
			outputs[i].Add(outputs[i], m)
		}
	}
	return nil
}

// LessHint outputs 1 when the first input is strictly below the second, 0
// otherwise.
func LessHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 {
		return errors.New("expecting two inputs")
	}
	if len(outputs) != 1 {
		return errors.New("expecting one output")
	}
	if inputs[0].Cmp(inputs[1]) < 0 {
		outputs[0].SetInt64(1)
	} else {
		outputs[0].SetInt64(0)
	}
	return nil
}

func compose(limbs []*big.Int, w uint) *big.Int {
	res := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		res.Lsh(res, w)
		res.Add(res, limbs[i])
	}
	return res
}
