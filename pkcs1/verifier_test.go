package pkcs1

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/consensys/certsnark/biguint"
	"github.com/consensys/certsnark/rangecheck"
)

const (
	testModulusBytes = 256
	testLimbBits     = 64
	testNbLimbs      = testModulusBytes * 8 / testLimbBits
)

type verifyCircuit struct {
	N      []frontend.Variable
	S      []frontend.Variable
	Digest [32]frontend.Variable
	Flag   frontend.Variable
}

func (c *verifyCircuit) Define(api frontend.API) error {
	rc, err := rangecheck.New(api, 12)
	if err != nil {
		return err
	}
	f, err := biguint.NewField(api, rc, testLimbBits)
	if err != nil {
		return err
	}
	for i := range c.Digest {
		rc.Check(c.Digest[i], 8)
	}
	v, err := NewVerifier(api, f, testModulusBytes)
	if err != nil {
		return err
	}
	flag := v.Verify(f.FromLimbs(c.N), f.FromLimbs(c.S), c.Digest[:])
	api.AssertIsEqual(flag, c.Flag)
	return rc.Finalize()
}

func newVerifyCircuit() *verifyCircuit {
	return &verifyCircuit{
		N: make([]frontend.Variable, testNbLimbs),
		S: make([]frontend.Variable, testNbLimbs),
	}
}

type testKey struct {
	key    *rsa.PrivateKey
	digest [32]byte
	sig    []byte
}

func newTestKey(t *testing.T, msg []byte) *testKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return &testKey{key: key, digest: digest, sig: sig}
}

func (tk *testKey) assignment(t *testing.T, flag int) *verifyCircuit {
	t.Helper()
	nLimbs, err := biguint.Decompose(tk.key.N, testNbLimbs, testLimbBits)
	require.NoError(t, err)
	sLimbs, err := biguint.Decompose(new(big.Int).SetBytes(tk.sig), testNbLimbs, testLimbBits)
	require.NoError(t, err)
	w := newVerifyCircuit()
	for i := range nLimbs {
		w.N[i] = nLimbs[i]
		w.S[i] = sLimbs[i]
	}
	for i := range tk.digest {
		w.Digest[i] = tk.digest[i]
	}
	w.Flag = flag
	return w
}

func TestVerifyValidSignature(t *testing.T) {
	tk := newTestKey(t, []byte("the quick brown fox"))
	err := test.IsSolved(newVerifyCircuit(), tk.assignment(t, 1), ecc.BN254.ScalarField())
	require.NoError(t, err)
}

// TestVerifyMismatchedDigest checks that a wrong digest turns the flag off
// instead of failing synthesis: the flag is an in-circuit value, not a host
// error.
func TestVerifyMismatchedDigest(t *testing.T) {
	tk := newTestKey(t, []byte("signed message"))
	w := tk.assignment(t, 0)
	w.Digest[0] = byte(tk.digest[0]) ^ 0x01
	err := test.IsSolved(newVerifyCircuit(), w, ecc.BN254.ScalarField())
	require.NoError(t, err)

	// the same witness claiming validity must not solve
	w.Flag = 1
	err = test.IsSolved(newVerifyCircuit(), w, ecc.BN254.ScalarField())
	require.Error(t, err)
}

func TestVerifyGarbageSignature(t *testing.T) {
	tk := newTestKey(t, []byte("another message"))
	w := tk.assignment(t, 0)
	w.S[5] = uint64(12345)
	err := test.IsSolved(newVerifyCircuit(), w, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestVerifyProver(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping prover test in short mode")
	}
	assert := test.NewAssert(t)
	tk := newTestKey(t, []byte("prover roundtrip"))
	invalid := tk.assignment(t, 0)
	assert.CheckCircuit(newVerifyCircuit(),
		test.WithValidAssignment(tk.assignment(t, 1)),
		test.WithInvalidAssignment(invalid),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	)
}

type ctorCircuit struct {
	X frontend.Variable
}

func (c *ctorCircuit) Define(api frontend.API) error {
	rc, err := rangecheck.New(api, 12)
	if err != nil {
		return err
	}
	f, err := biguint.NewField(api, rc, testLimbBits)
	if err != nil {
		return err
	}
	if _, err := NewVerifier(api, f, 56); !errors.Is(err, ErrModulusTooShort) {
		return fmt.Errorf("expected short-modulus error, got %v", err)
	}
	if _, err := NewVerifier(api, f, 257); err == nil {
		return errors.New("expected limb-alignment error")
	}
	api.AssertIsEqual(c.X, c.X)
	return rc.Finalize()
}

func TestNewVerifierValidation(t *testing.T) {
	err := test.IsSolved(&ctorCircuit{X: 1}, &ctorCircuit{X: 1}, ecc.BN254.ScalarField())
	require.NoError(t, err)
}
