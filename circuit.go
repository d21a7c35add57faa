package certsnark

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/biguint"
	"github.com/consensys/certsnark/pkcs1"
	"github.com/consensys/certsnark/rangecheck"
	"github.com/consensys/certsnark/sha2"
)

// Circuit proves that Signature is a valid RSA PKCS#1 v1.5 signature over
// Message under Modulus, and that Digest is the SHA-256 of Message. Struct
// field order fixes the public instance: modulus limbs least significant
// first, then the 32 digest bytes in digest order. Signature limbs and
// message bytes stay private.
//
// The shape is fixed at compile time by [NewCircuit]; assignments come from
// [NewAssignment].
type Circuit struct {
	Modulus   []frontend.Variable `gnark:",public"`
	Digest    []frontend.Variable `gnark:",public"`
	Signature []frontend.Variable
	Message   []frontend.Variable

	params Params
}

// NewCircuit allocates the circuit shape for messages of exactly msgLen
// bytes under params.
func NewCircuit(params Params, msgLen int) (*Circuit, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if msgLen <= 0 || msgLen > params.MaxMsgLen {
		return nil, fmt.Errorf("%w: message length %d outside (0, %d]", ErrInvalidParams, msgLen, params.MaxMsgLen)
	}
	return &Circuit{
		Modulus:   make([]frontend.Variable, params.NbLimbs()),
		Digest:    make([]frontend.Variable, sha2.Size),
		Signature: make([]frontend.Variable, params.NbLimbs()),
		Message:   make([]frontend.Variable, msgLen),
		params:    params,
	}, nil
}

// Define synthesizes the verification constraints: load the bitwise lookup
// tables, collect range checks, ingest the modulus and signature limbs,
// hash the message, check the signature against the encoded digest, then
// finalize the range-check accounting and bind the computed digest to the
// public digest variables.
func (c *Circuit) Define(api frontend.API) error {
	if err := c.params.Validate(); err != nil {
		return err
	}
	if len(c.Modulus) != c.params.NbLimbs() || len(c.Signature) != c.params.NbLimbs() {
		return fmt.Errorf("%w: modulus and signature need %d limbs each", ErrInvalidParams, c.params.NbLimbs())
	}
	if len(c.Digest) != sha2.Size {
		return fmt.Errorf("%w: digest needs %d byte variables", ErrInvalidParams, sha2.Size)
	}
	if len(c.Message) == 0 || len(c.Message) > c.params.MaxMsgLen {
		return fmt.Errorf("%w: message length %d outside (0, %d]", ErrInvalidParams, len(c.Message), c.params.MaxMsgLen)
	}

	tables := sha2.NewTables(api)
	if err := tables.Load(); err != nil {
		return err
	}
	rc, err := rangecheck.New(api, c.params.RangeTableBits)
	if err != nil {
		return err
	}
	f, err := biguint.NewField(api, rc, uint(c.params.LimbBits))
	if err != nil {
		return err
	}

	n := f.FromLimbs(c.Modulus)
	s := f.FromLimbs(c.Signature)

	h, err := sha2.New(api, tables, rc)
	if err != nil {
		return err
	}
	digest := h.Sum(c.Message)

	v, err := pkcs1.NewVerifier(api, f, c.params.ModulusBytes())
	if err != nil {
		return err
	}
	flag := v.Verify(n, s, digest)
	api.AssertIsEqual(flag, 1)

	if err := rc.Finalize(); err != nil {
		return err
	}

	for i := range digest {
		api.AssertIsEqual(c.Digest[i], digest[i])
	}
	return nil
}
