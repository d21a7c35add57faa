package certsnark

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())
	require.Equal(t, 32, p.NbLimbs())
	require.Equal(t, 256, p.ModulusBytes())
}

func TestParamsValidate(t *testing.T) {
	base := DefaultParams()
	for _, tc := range []struct {
		name   string
		mutate func(*Params)
		msg    string
	}{
		{"modulus not byte aligned", func(p *Params) { p.ModulusBits = 2047 }, "byte aligned"},
		{"limb width zero", func(p *Params) { p.LimbBits = 0 }, "limb width"},
		{"limb width over native word", func(p *Params) { p.LimbBits = 72 }, "limb width"},
		{"limb width not byte aligned", func(p *Params) { p.LimbBits = 12 }, "limb width"},
		{"limb width not dividing", func(p *Params) { p.LimbBits = 48 }, "does not divide"},
		{"modulus without padding room", func(p *Params) { p.ModulusBits = 256 }, "no room"},
		{"even exponent", func(p *Params) { p.Exponent = 65536 }, "2^k+1"},
		{"unsupported exponent", func(p *Params) { p.Exponent = 257 }, "schedule"},
		{"no message budget", func(p *Params) { p.MaxMsgLen = 0 }, "message length"},
		{"narrow byte tables", func(p *Params) { p.ByteTableBits = 4 }, "byte tables"},
		{"range table over budget", func(p *Params) { p.RangeTableBits = 17 }, "row budget"},
		{"paired tables over budget", func(p *Params) { p.RowExponent = 15; p.RangeTableBits = 12 }, "rows"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			err := p.Validate()
			require.ErrorIs(t, err, ErrInvalidParams)
			require.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestParamsAlternativeShapes(t *testing.T) {
	p := DefaultParams()
	p.LimbBits = 32
	require.NoError(t, p.Validate())
	require.Equal(t, 64, p.NbLimbs())

	p = DefaultParams()
	p.RangeTableBits = 0 // synthesis-time width selection
	require.NoError(t, p.Validate())
}
