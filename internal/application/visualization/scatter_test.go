package visualization

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/pkg/errors"
)

func TestRenderScatterPNG_Size(t *testing.T) {
	b, err := RenderScatterPNG(threeRows, 640, 480)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
}

func TestRenderScatterPNG_SinglePoint(t *testing.T) {
	_, err := RenderScatterPNG(molecule.Table{{SMILES: "C", LogP: 0.6361, SAScore: 1}}, 320, 240)
	assert.NoError(t, err)
}

func TestRenderScatterPNG_Empty(t *testing.T) {
	_, err := RenderScatterPNG(nil, 320, 240)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeTableMissing))
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{0, 10})
	assert.InDelta(t, -0.5, r.Min, 1e-9)
	assert.InDelta(t, 10.5, r.Max, 1e-9)

	flat := paddedRange([]float64{2, 2})
	assert.Less(t, flat.Min, flat.Max)
}
