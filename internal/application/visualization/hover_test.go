package visualization

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/depiction"
	"github.com/turtacn/MolScope/pkg/errors"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderPNG(ctx context.Context, mol *molecule.Molecule) ([]byte, error) {
	args := m.Called(ctx, mol)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func intPtr(i int) *int { return &i }

func TestHover_NoPointNeverRenders(t *testing.T) {
	r := &mockRenderer{}
	svc := NewService(r, 250, nil, nil)

	for _, ev := range []*HoverEvent{nil, {}, {Points: []HoverPoint{{}}}} {
		tip, err := svc.Hover(context.Background(), threeRows, ev)
		require.NoError(t, err)
		assert.False(t, tip.Show)
		assert.Empty(t, tip.Image)
	}
	r.AssertNotCalled(t, "RenderPNG", mock.Anything, mock.Anything)
}

func TestHover_RendersRowAtIndex(t *testing.T) {
	r := &mockRenderer{}
	r.On("RenderPNG", mock.Anything, mock.MatchedBy(func(m *molecule.Molecule) bool {
		return m.SMILES == "c1ccccc1"
	})).Return([]byte("png"), nil).Once()

	box := &BBox{X0: 1, X1: 2, Y0: 3, Y1: 4}
	tip, err := NewService(r, 250, nil, nil).Hover(context.Background(), threeRows,
		&HoverEvent{Points: []HoverPoint{{PointNumber: intPtr(1), BBox: box}}})
	require.NoError(t, err)

	assert.True(t, tip.Show)
	assert.Equal(t, box, tip.BBox)
	assert.Equal(t, "c1ccccc1", tip.SMILES)
	assert.Equal(t, 250, tip.Width)
	assert.Equal(t, depiction.DataURI([]byte("png")), tip.Image)
	r.AssertExpectations(t)
}

func TestHover_RealRenderer(t *testing.T) {
	svc := NewService(depiction.NewRenderer(depiction.Options{Size: 120}, nil), 0, nil, nil)
	tip, err := svc.Hover(context.Background(), threeRows, &HoverEvent{Points: []HoverPoint{{PointNumber: intPtr(0)}}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tip.Image, depiction.DataURIPrefix))
	assert.Equal(t, "CCO", tip.SMILES)
	assert.Equal(t, 250, tip.Width)
}

func TestHover_OutOfRange(t *testing.T) {
	r := &mockRenderer{}
	svc := NewService(r, 250, nil, nil)
	for _, idx := range []int{-1, 3, 100} {
		tip, err := svc.Hover(context.Background(), threeRows, &HoverEvent{Points: []HoverPoint{{PointNumber: intPtr(idx)}}})
		assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeIndexOutOfRange), "index %d", idx)
		assert.False(t, tip.Show)
	}
	r.AssertNotCalled(t, "RenderPNG", mock.Anything, mock.Anything)
}

func TestHover_RenderFailure(t *testing.T) {
	r := &mockRenderer{}
	r.On("RenderPNG", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := NewService(r, 250, nil, nil).Hover(context.Background(), threeRows,
		&HoverEvent{Points: []HoverPoint{{PointNumber: intPtr(2)}}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeRenderFailed))
	assert.ErrorIs(t, err, assert.AnError)
}
