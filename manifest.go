package certsnark

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/blang/semver/v4"
	"github.com/consensys/gnark/logger"
	"github.com/fxamacker/cbor/v2"
)

// Manifest identifies the build of a compiled circuit so that proving and
// verifying artifacts persisted next to it can be matched to the exact
// shape that produced them: layout version, scalar field, parameters and
// compiled message length.
type Manifest struct {
	// CircuitVersion is the [Version] of the build that compiled the
	// circuit.
	CircuitVersion string
	// ScalarField is the compile field modulus in base 16.
	ScalarField string
	// Params is the shape the circuit was compiled with.
	Params Params
	// MsgLen is the compiled message length in bytes.
	MsgLen int
}

// NewManifest stamps the current layout version over the compiled shape.
func NewManifest(field *big.Int, params Params, msgLen int) (*Manifest, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if field == nil || field.Sign() <= 0 {
		return nil, errors.New("certsnark: scalar field must be a positive integer")
	}
	if msgLen <= 0 || msgLen > params.MaxMsgLen {
		return nil, fmt.Errorf("%w: message length %d outside (0, %d]", ErrInvalidParams, msgLen, params.MaxMsgLen)
	}
	return &Manifest{
		CircuitVersion: Version.String(),
		ScalarField:    field.Text(16),
		Params:         params,
		MsgLen:         msgLen,
	}, nil
}

// Field returns the scalar field modulus recorded in the manifest.
func (m *Manifest) Field() (*big.Int, error) {
	f, ok := new(big.Int).SetString(m.ScalarField, 16)
	if !ok {
		return nil, fmt.Errorf("certsnark: when parsing serialized field modulus: %s", m.ScalarField)
	}
	return f, nil
}

// WriteTo encodes the manifest with deterministic CBOR.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	data, err := enc.Marshal(m)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom decodes a manifest and checks its header: the layout version
// must parse, the field must be a positive integer and the parameters must
// validate. A version mismatch with this build is logged, not fatal;
// artifact compatibility is on the caller.
func (m *Manifest) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return int64(len(data)), err
	}
	if err := dm.Unmarshal(data, m); err != nil {
		return int64(len(data)), err
	}
	return int64(len(data)), m.checkHeader()
}

func (m *Manifest) checkHeader() error {
	manifestVersion, err := semver.Parse(m.CircuitVersion)
	if err != nil {
		return fmt.Errorf("when parsing circuit version: %w", err)
	}
	if Version.Compare(manifestVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", Version.String()).Str("manifest", manifestVersion.String()).Msg("circuit layout version mismatch. there are no guarantees on artifact compatibility")
	}
	if _, err := m.Field(); err != nil {
		return err
	}
	if err := m.Params.Validate(); err != nil {
		return err
	}
	if m.MsgLen <= 0 || m.MsgLen > m.Params.MaxMsgLen {
		return fmt.Errorf("%w: message length %d outside (0, %d]", ErrInvalidParams, m.MsgLen, m.Params.MaxMsgLen)
	}
	return nil
}
