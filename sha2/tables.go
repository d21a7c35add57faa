package sha2

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/internal/logderiv"
)

var (
	// ErrTablesNotLoaded is returned when a hasher is constructed over tables
	// whose Load step was skipped.
	ErrTablesNotLoaded = errors.New("sha2: tables not loaded")
	// ErrAlreadyLoaded is returned by a second call to Load.
	ErrAlreadyLoaded = errors.New("sha2: tables already loaded")
)

// Tables holds the precomputed byte-function lookups the hasher queries
// instead of decomposing words into bits. Each function gets one packed
// table of 2^16 entries, input bytes in the low half, function value in the
// high half; membership is proven by one log-derivative argument per
// function at the end of compilation.
//
// One Tables value serves any number of hashers in the same circuit. Load
// must be called exactly once before a hasher is constructed.
type Tables struct {
	api  frontend.API
	xorQ []frontend.Variable
	andQ []frontend.Variable

	loaded bool
}

// NewTables returns table state bound to the given builder. The tables are
// empty until [Tables.Load] is called.
func NewTables(api frontend.API) *Tables {
	return &Tables{api: api}
}

// Load marks the tables live and defers their construction, together with
// the membership arguments over all queries collected during synthesis, to
// the compile phase.
func (t *Tables) Load() error {
	if t.loaded {
		return ErrAlreadyLoaded
	}
	t.loaded = true
	t.api.Compiler().Defer(t.build)
	return nil
}

// queryXor returns x ^ y and records the packed lookup query. Inputs must
// already be constrained to bytes.
func (t *Tables) queryXor(x, y frontend.Variable) frontend.Variable {
	return t.query(XorHint, &t.xorQ, x, y)
}

// queryAnd returns x & y and records the packed lookup query. Inputs must
// already be constrained to bytes.
func (t *Tables) queryAnd(x, y frontend.Variable) frontend.Variable {
	return t.query(AndHint, &t.andQ, x, y)
}

func (t *Tables) query(fn func(*big.Int, []*big.Int, []*big.Int) error, queries *[]frontend.Variable, x, y frontend.Variable) frontend.Variable {
	res, err := t.api.Compiler().NewHint(fn, 1, x, y)
	if err != nil {
		panic(err)
	}
	packed := t.api.Add(x, t.api.Mul(y, 1<<8), t.api.Mul(res[0], 1<<16))
	*queries = append(*queries, packed)
	return res[0]
}

func (t *Tables) build(api frontend.API) error {
	if len(t.xorQ) > 0 {
		if err := logderiv.Build(api, packedTable(func(x, y uint8) uint8 { return x ^ y }), t.xorQ); err != nil {
			return err
		}
	}
	if len(t.andQ) > 0 {
		if err := logderiv.Build(api, packedTable(func(x, y uint8) uint8 { return x & y }), t.andQ); err != nil {
			return err
		}
	}
	return nil
}

func packedTable(fn func(x, y uint8) uint8) []frontend.Variable {
	tbl := make([]frontend.Variable, 1<<16)
	for x := 0; x < 256; x++ {
		for y := 0; y < 256; y++ {
			i := x | y<<8
			tbl[i] = i | int(fn(uint8(x), uint8(y)))<<16
		}
	}
	return tbl
}
