package sha2

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/consensys/certsnark/rangecheck"
)

type sha2Circuit struct {
	In       []frontend.Variable
	Expected [32]frontend.Variable
}

func (c *sha2Circuit) Define(api frontend.API) error {
	tables := NewTables(api)
	if err := tables.Load(); err != nil {
		return err
	}
	rc, err := rangecheck.New(api, 12)
	if err != nil {
		return err
	}
	h, err := New(api, tables, rc)
	if err != nil {
		return err
	}
	res := h.Sum(c.In)
	if len(res) != 32 {
		return fmt.Errorf("not 32 bytes")
	}
	for i := range c.Expected {
		api.AssertIsEqual(res[i], c.Expected[i])
	}
	return rc.Finalize()
}

func newSha2Assignment(msg []byte) *sha2Circuit {
	dgst := sha256.Sum256(msg)
	w := &sha2Circuit{In: make([]frontend.Variable, len(msg))}
	for i := range msg {
		w.In[i] = msg[i]
	}
	for i := range dgst {
		w.Expected[i] = dgst[i]
	}
	return w
}

func TestSumVectors(t *testing.T) {
	// FIPS 180-4 sample messages plus block-boundary lengths
	msgs := [][]byte{
		{},
		[]byte("abc"),
		[]byte("abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq"),
		make([]byte, 55),
		make([]byte, 64),
		make([]byte, 120),
	}
	for _, msg := range msgs {
		msg := msg
		t.Run(fmt.Sprintf("len=%d", len(msg)), func(t *testing.T) {
			w := newSha2Assignment(msg)
			err := test.IsSolved(&sha2Circuit{In: make([]frontend.Variable, len(msg))}, w, ecc.BN254.ScalarField())
			require.NoError(t, err)
		})
	}
}

func TestSumRandom(t *testing.T) {
	for _, n := range []int{1, 31, 56, 63, 65, 200} {
		msg := make([]byte, n)
		_, err := rand.Read(msg)
		require.NoError(t, err)
		w := newSha2Assignment(msg)
		err = test.IsSolved(&sha2Circuit{In: make([]frontend.Variable, n)}, w, ecc.BN254.ScalarField())
		require.NoError(t, err, "length %d", n)
	}
}

func TestSumWrongDigest(t *testing.T) {
	msg := []byte("abc")
	w := newSha2Assignment(msg)
	w.Expected[7] = 0xaa
	err := test.IsSolved(&sha2Circuit{In: make([]frontend.Variable, len(msg))}, w, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestSumProver(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping prover test in short mode")
	}
	assert := test.NewAssert(t)
	msg := []byte("abc")
	invalid := newSha2Assignment(msg)
	invalid.Expected[0] = 0
	assert.CheckCircuit(&sha2Circuit{In: make([]frontend.Variable, len(msg))},
		test.WithValidAssignment(newSha2Assignment(msg)),
		test.WithInvalidAssignment(invalid),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

type loadTwiceCircuit struct {
	X frontend.Variable
}

func (c *loadTwiceCircuit) Define(api frontend.API) error {
	tables := NewTables(api)
	if err := tables.Load(); err != nil {
		return err
	}
	return tables.Load()
}

func TestLoadTwice(t *testing.T) {
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &loadTwiceCircuit{})
	require.Error(t, err)
	require.ErrorContains(t, err, "already loaded")
}

type unloadedTablesCircuit struct {
	X frontend.Variable
}

func (c *unloadedTablesCircuit) Define(api frontend.API) error {
	rc, err := rangecheck.New(api, 12)
	if err != nil {
		return err
	}
	if _, err := New(api, NewTables(api), rc); err != nil {
		return err
	}
	return fmt.Errorf("hasher accepted unloaded tables")
}

func TestUnloadedTables(t *testing.T) {
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &unloadedTablesCircuit{})
	require.Error(t, err)
	require.ErrorContains(t, err, "not loaded")
}
