package certsnark

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

type compileConfig struct {
	scs          bool
	log          *zerolog.Logger
	frontendOpts []frontend.CompileOption
}

// CompileOption configures [Compile].
type CompileOption func(*compileConfig) error

// WithSparseR1CS compiles to a sparse constraint system for PLONK-style
// backends instead of the default R1CS.
func WithSparseR1CS() CompileOption {
	return func(c *compileConfig) error {
		c.scs = true
		return nil
	}
}

// WithLogger routes compile logging through l instead of the global gnark
// logger.
func WithLogger(l zerolog.Logger) CompileOption {
	return func(c *compileConfig) error {
		c.log = &l
		return nil
	}
}

// WithCompileOptions forwards options to [frontend.Compile].
func WithCompileOptions(opts ...frontend.CompileOption) CompileOption {
	return func(c *compileConfig) error {
		c.frontendOpts = append(c.frontendOpts, opts...)
		return nil
	}
}

// Compile builds the constraint system for messages of exactly msgLen bytes
// over the given scalar field. The same params and msgLen always compile to
// the same system; callers prove many witnesses against one compiled
// system.
func Compile(field *big.Int, params Params, msgLen int, opts ...CompileOption) (constraint.ConstraintSystem, error) {
	cfg := compileConfig{}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	log := logger.Logger()
	if cfg.log != nil {
		log = *cfg.log
	}

	circuit, err := NewCircuit(params, msgLen)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("modulusBits", params.ModulusBits).
		Int("msgLen", msgLen).
		Bool("scs", cfg.scs).
		Msg("compiling signature circuit")
	start := time.Now()

	var newBuilder frontend.NewBuilder = r1cs.NewBuilder
	if cfg.scs {
		newBuilder = scs.NewBuilder
	}
	ccs, err := frontend.Compile(field, newBuilder, circuit, cfg.frontendOpts...)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Dur("took", time.Since(start)).
		Int("nbConstraints", ccs.GetNbConstraints()).
		Msg("signature circuit compiled")
	return ccs, nil
}
