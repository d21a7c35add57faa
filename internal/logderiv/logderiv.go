// Package logderiv proves multiset inclusion with a log-derivative argument.
//
// To show that a multiset of queries is contained in a table (t_1, ..., t_n),
// it suffices to exhibit multiplicities count_i and check
//
//	∑_i count_i/(x − t_i) == ∑_j 1/(x − q_j)
//
// at a random point x, as shown in [Haböck22]. The multiplicities come from a
// hint and x is derived from a commitment to the multiplicities and queries,
// so the prover cannot steer the evaluation point towards a pole.
//
// This is a low-level primitive: table entries must be compile-time
// constants fitting a machine word, pairwise distinct, and callers with
// multi-column relations pack every row into a single field element before
// building the argument.
//
// [Haböck22]: https://eprint.iacr.org/2022/1530
package logderiv

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/multicommit"
)

func init() {
	solver.RegisterHint(GetHints()...)
}

// GetHints returns all hints used in this package.
func GetHints() []solver.Hint {
	return []solver.Hint{CountHint}
}

// Build asserts that every entry of queries is a member of table. The sum
// equality itself is checked inside a deferred commitment callback, after all
// in-flight commitments are collected.
func Build(api frontend.API, table, queries []frontend.Variable) error {
	if len(table) == 0 {
		return errors.New("empty table")
	}
	if len(queries) == 0 {
		return nil
	}
	// entries fit a machine word, so distinctness fits a bitset
	seen := bitset.New(uint(len(table)))
	for i := range table {
		c, isConst := api.Compiler().ConstantValue(table[i])
		if !isConst {
			return fmt.Errorf("table entry %d is not a constant", i)
		}
		if !c.IsUint64() {
			return fmt.Errorf("table entry %d does not fit a machine word", i)
		}
		v := uint(c.Uint64())
		if seen.Test(v) {
			return fmt.Errorf("duplicate table entry %d", i)
		}
		seen.Set(v)
	}
	hintIn := make([]frontend.Variable, 0, 1+len(table)+len(queries))
	hintIn = append(hintIn, len(table))
	hintIn = append(hintIn, table...)
	hintIn = append(hintIn, queries...)
	counts, err := api.Compiler().NewHint(CountHint, len(table), hintIn...)
	if err != nil {
		return fmt.Errorf("count hint: %w", err)
	}
	toCommit := make([]frontend.Variable, 0, len(counts)+len(queries))
	toCommit = append(toCommit, counts...)
	toCommit = append(toCommit, queries...)
	multicommit.WithCommitment(api, func(api frontend.API, challenge frontend.Variable) error {
		var lp frontend.Variable = 0
		for i := range table {
			lp = api.Add(lp, api.DivUnchecked(counts[i], api.Sub(challenge, table[i])))
		}
		var rp frontend.Variable = 0
		for i := range queries {
			rp = api.Add(rp, api.Inverse(api.Sub(challenge, queries[i])))
		}
		api.AssertIsEqual(lp, rp)
		return nil
	}, toCommit...)
	return nil
}

// CountHint computes the multiplicity of every table entry among the queries.
// Inputs are the table length, the table entries and then the queries;
// outputs are one count per table entry.
func CountHint(m *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) < 2 {
		return errors.New("expecting table length and at least one entry")
	}
	if !inputs[0].IsInt64() {
		return errors.New("table length must fit int64")
	}
	nbTable := int(inputs[0].Int64())
	if len(inputs) < 1+nbTable {
		return errors.New("input doesn't fit table")
	}
	if len(outputs) != nbTable {
		return errors.New("expecting one output per table entry")
	}
	nbBytes := (m.BitLen() + 7) / 8
	buf := make([]byte, nbBytes)
	histo := make(map[string]int64, nbTable) // string keys, big ints are not comparable
	for i := 0; i < nbTable; i++ {
		inputs[1+i].FillBytes(buf)
		k := string(buf)
		if _, ok := histo[k]; ok {
			return errors.New("duplicate table entry")
		}
		histo[k] = 0
	}
	for i := 1 + nbTable; i < len(inputs); i++ {
		inputs[i].FillBytes(buf)
		k := string(buf)
		if _, ok := histo[k]; !ok {
			return errors.New("query element not in table")
		}
		histo[k]++
	}
	for i := 0; i < nbTable; i++ {
		inputs[1+i].FillBytes(buf)
		outputs[i].SetInt64(histo[string(buf)])
	}
	return nil
}
