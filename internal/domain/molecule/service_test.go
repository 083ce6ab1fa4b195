package molecule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/pkg/errors"
)

func TestCalculator_Describe(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calc := NewCalculator(logging.NewLoggerFromCore(core))

	rec, err := calc.Describe(context.Background(), "c1ccccc1 benzene")
	require.NoError(t, err)
	assert.Equal(t, "c1ccccc1", rec.SMILES)
	assert.Equal(t, "benzene", rec.Name)
	assert.InDelta(t, 1.6866, rec.LogP, 1e-4)
	assert.GreaterOrEqual(t, rec.SAScore, 1.0)
	assert.Equal(t, 1, logs.FilterMessage("descriptors computed").Len())
}

func TestCalculator_DescribeInvalid(t *testing.T) {
	calc := NewCalculator(nil)

	_, err := calc.Describe(context.Background(), "not_a_molecule")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidSMILES))

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestCalculator_DescribeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCalculator(nil).Describe(ctx, "CCO")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTable_At(t *testing.T) {
	tbl := Table{{SMILES: "CCO"}, {SMILES: "c1ccccc1"}}
	r, ok := tbl.At(1)
	assert.True(t, ok)
	assert.Equal(t, "c1ccccc1", r.SMILES)

	_, ok = tbl.At(2)
	assert.False(t, ok)
	_, ok = tbl.At(-1)
	assert.False(t, ok)
	assert.Equal(t, []string{"CCO", "c1ccccc1"}, tbl.SMILES())
}
