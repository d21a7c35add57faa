// Package rangecheck constrains field elements to a declared bit width.
//
// Checks are collected during synthesis and discharged together by
// [Checker.Finalize]: every collected variable is decomposed into base-2^w
// digits and each digit is proven to be a member of one shared [0, 2^w)
// lookup table through a log-derivative argument. A single table therefore
// serves every width used in the circuit, and its size 2^w is the row floor
// the circuit pays regardless of how many checks it performs.
//
// Finalize must be called exactly once, after the last check has been
// collected. Skipping it is a build-time error: the constructor registers a
// deferred compile-phase callback which fails the compilation of a circuit
// that never finalized its checker.
package rangecheck

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/internal/logderiv"
)

var (
	// ErrNotFinalized is returned at compile time when a checker collected
	// checks but Finalize was never called.
	ErrNotFinalized = errors.New("rangecheck: Finalize not called")
	// ErrFinalized is returned by a second call to Finalize.
	ErrFinalized = errors.New("rangecheck: already finalized")
)

// maxTableBits bounds the configurable table width. Larger tables dominate
// the circuit instead of serving it.
const maxTableBits = 20

func init() {
	solver.RegisterHint(GetHints()...)
}

// GetHints returns all hints used in this package.
func GetHints() []solver.Hint {
	return []solver.Hint{DecomposeHint}
}

type checkedVariable struct {
	v    frontend.Variable
	bits int
}

// Checker collects bit-width checks and discharges them in one shared lookup
// argument. Not safe for concurrent use; a circuit builds its constraints on
// a single goroutine.
type Checker struct {
	api       frontend.API
	tableBits int
	collected []checkedVariable
	finalized bool
}

// New returns a checker emitting digit queries against a [0, 2^tableBits)
// table. tableBits == 0 defers the width choice to Finalize, which then
// minimizes the estimated constraint count over the collected checks. The
// builder must support commitments; the lookup argument needs a
// verifier-independent challenge.
func New(api frontend.API, tableBits int) (*Checker, error) {
	if tableBits < 0 || tableBits > maxTableBits {
		return nil, fmt.Errorf("table width %d out of range [0, %d]", tableBits, maxTableBits)
	}
	if _, ok := api.(frontend.Committer); !ok {
		return nil, errors.New("builder does not support commitments")
	}
	c := &Checker{api: api, tableBits: tableBits}
	api.Compiler().Defer(func(frontend.API) error {
		if !c.finalized {
			return ErrNotFinalized
		}
		return nil
	})
	return c, nil
}

// Check collects the claim that v fits in bits bits. No constraints are
// emitted before Finalize.
func (c *Checker) Check(v frontend.Variable, bits int) {
	if c.finalized {
		panic("rangecheck: check after Finalize")
	}
	if bits <= 0 {
		panic("rangecheck: non-positive width")
	}
	if bits >= c.api.Compiler().FieldBitLen() {
		panic("rangecheck: width exceeds field")
	}
	c.collected = append(c.collected, checkedVariable{v: v, bits: bits})
}

// Count returns the number of collected checks.
func (c *Checker) Count() int {
	return len(c.collected)
}

// Finalize decomposes every collected variable, queries all digits against
// the shared table and builds the membership argument. Exactly one call per
// checker.
func (c *Checker) Finalize() error {
	if c.finalized {
		return ErrFinalized
	}
	c.finalized = true
	if len(c.collected) == 0 {
		return nil
	}
	w := c.tableBits
	if w == 0 {
		w = optimalWidth(c.collected)
	}
	coef := new(big.Int)
	one := big.NewInt(1)
	var queries []frontend.Variable
	for _, cv := range c.collected {
		nbDigits := decompSize(cv.bits, w)
		shift := nbDigits*w - cv.bits
		if nbDigits == 1 {
			// single digit, the variable is its own decomposition
			queries = append(queries, cv.v)
			if shift > 0 {
				queries = append(queries, c.api.Mul(cv.v, coef.Lsh(one, uint(shift))))
			}
			continue
		}
		digits, err := c.api.Compiler().NewHint(DecomposeHint, nbDigits, cv.bits, w, cv.v)
		if err != nil {
			return fmt.Errorf("decompose: %w", err)
		}
		var composed frontend.Variable = 0
		for j := range digits {
			composed = c.api.Add(composed, c.api.Mul(digits[j], coef.Lsh(one, uint(w*j))))
		}
		c.api.AssertIsEqual(composed, cv.v)
		queries = append(queries, digits...)
		if shift > 0 {
			// the most significant digit carries only bits%w bits; its
			// shifted copy must also be a table member, pinning both range
			// and integrality
			queries = append(queries, c.api.Mul(digits[nbDigits-1], coef.Lsh(one, uint(shift))))
		}
	}
	table := make([]frontend.Variable, 1<<w)
	for i := range table {
		table[i] = i
	}
	return logderiv.Build(c.api, table, queries)
}

func decompSize(varSize, limbSize int) int {
	return (varSize + limbSize - 1) / limbSize
}

// optimalWidth minimizes the estimated R1CS constraint count: one table
// entry cost per table row, one query per digit, one recomposition equality
// per collected variable.
func optimalWidth(collected []checkedVariable) int {
	best := 0
	bestCost := math.MaxInt
	for w := 2; w < 18; w++ {
		cost := nbConstraints(w, collected)
		if cost < bestCost {
			bestCost = cost
			best = w
		}
	}
	return best
}

func nbConstraints(w int, collected []checkedVariable) int {
	nbDecomposed := 0
	for i := range collected {
		nbDigits := decompSize(collected[i].bits, w)
		if nbDigits*w > collected[i].bits {
			nbDigits++
		}
		nbDecomposed += nbDigits
	}
	return (1 << w) + nbDecomposed + len(collected) + 1
}

// DecomposeHint splits inputs[2] into base-2^inputs[1] digits, least
// significant first.
func DecomposeHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 3 {
		return errors.New("expecting three inputs")
	}
	if !inputs[0].IsUint64() || !inputs[1].IsUint64() {
		return errors.New("width inputs must be uint64")
	}
	varSize := int(inputs[0].Int64())
	limbSize := int(inputs[1].Int64())
	val := inputs[2]
	if len(outputs) != decompSize(varSize, limbSize) {
		return errors.New("wrong number of outputs")
	}
	base := new(big.Int).Lsh(big.NewInt(1), uint(limbSize))
	tmp := new(big.Int).Set(val)
	for i := 0; i < len(outputs); i++ {
		outputs[i].Mod(tmp, base)
		tmp.Rsh(tmp, uint(limbSize))
	}
	return nil
}
