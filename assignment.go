package certsnark

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/certsnark/biguint"
	"github.com/consensys/certsnark/sha2"
)

// NewAssignment builds the witness for one (modulus, signature, message)
// triple: the limb encodings of n and the signature, the message bytes, and
// SHA-256 of the message as the public digest. Out-of-width integers and
// over-long messages are rejected here, before anything reaches a solver.
//
// The message must match the length the circuit was compiled for; gnark
// enforces that at witness construction.
func NewAssignment(params Params, n, signature *big.Int, msg []byte) (*Circuit, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if n == nil || signature == nil {
		return nil, errors.New("certsnark: nil modulus or signature")
	}
	if len(msg) == 0 {
		return nil, errors.New("certsnark: empty message")
	}
	if len(msg) > params.MaxMsgLen {
		return nil, fmt.Errorf("%w: %d bytes over the %d byte maximum", ErrMessageTooLong, len(msg), params.MaxMsgLen)
	}

	nbLimbs := params.NbLimbs()
	nLimbs, err := biguint.Decompose(n, nbLimbs, uint(params.LimbBits))
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	sLimbs, err := biguint.Decompose(signature, nbLimbs, uint(params.LimbBits))
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	digest := sha256.Sum256(msg)

	w := &Circuit{
		Modulus:   make([]frontend.Variable, nbLimbs),
		Digest:    make([]frontend.Variable, sha2.Size),
		Signature: make([]frontend.Variable, nbLimbs),
		Message:   make([]frontend.Variable, len(msg)),
	}
	for i := 0; i < nbLimbs; i++ {
		w.Modulus[i] = nLimbs[i]
		w.Signature[i] = sLimbs[i]
	}
	for i, b := range digest {
		w.Digest[i] = b
	}
	for i, b := range msg {
		w.Message[i] = b
	}
	return w, nil
}
