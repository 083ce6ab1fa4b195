package depiction

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/pkg/errors"
)

func TestRenderer_RenderPNG(t *testing.T) {
	r := NewRenderer(Options{Size: 250}, nil)

	for _, smiles := range []string{
		"c1ccccc1", "CCO", "[NH4+]", "C#N", "O=C(O)c1ccccc1OC(C)=O",
		"[13CH4]", "[Na+].[Cl-]", "C1CC2CCC1C2", "OS(=O)(=O)[O-]",
	} {
		t.Run(smiles, func(t *testing.T) {
			mol, err := molecule.Parse(smiles)
			require.NoError(t, err)

			out, err := r.RenderPNG(context.Background(), mol)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, 250, img.Bounds().Dx())
			assert.Equal(t, 250, img.Bounds().Dy())
		})
	}
}

func TestRenderer_DrawsSomething(t *testing.T) {
	r := NewRenderer(Options{Size: 120}, nil)
	out, err := r.RenderSMILES(context.Background(), "CCO")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r < 0x8000 || g < 0x8000 || bl < 0x8000 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 10)
}

func TestRenderer_Errors(t *testing.T) {
	r := NewRenderer(Options{}, nil)

	_, err := r.RenderPNG(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRenderFailed))

	_, err = r.RenderSMILES(context.Background(), "C1CC")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidSMILES))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mol, _ := molecule.Parse("C")
	_, err = r.RenderPNG(ctx, mol)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_LargeMoleculeIsBounded(t *testing.T) {
	r := NewRenderer(Options{Size: 250}, nil)
	mol, err := molecule.Parse(strings.Repeat("C", 4900))
	require.NoError(t, err)

	start := time.Now()
	out, err := r.RenderPNG(context.Background(), mol)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.RenderPNG(ctx, mol)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataURI(t *testing.T) {
	uri := DataURI([]byte{0x89, 'P', 'N', 'G'})
	require.True(t, strings.HasPrefix(uri, DataURIPrefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw)
}

func TestClipToBox(t *testing.T) {
	p := clipToBox(0, 0, 10, 0, labelBox{left: 2, right: 3, top: 1, bottom: 1})
	assert.InDelta(t, 3, p[0], 1e-9)
	assert.InDelta(t, 0, p[1], 1e-9)

	p = clipToBox(0, 0, 0, 10, labelBox{left: 2, right: 3, top: 1, bottom: 4})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 4, p[1], 1e-9)

	p = clipToBox(5, 5, 10, 10, labelBox{})
	assert.Equal(t, [2]float64{5, 5}, p)
}
