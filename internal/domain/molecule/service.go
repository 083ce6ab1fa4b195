package molecule

import (
	"context"
	"math"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/pkg/errors"
)

// Calculator is the DescriptorCalculator backed by the in-package toolkit.
type Calculator struct {
	logger logging.Logger
}

// NewCalculator constructs a Calculator.  A nil logger discards output.
func NewCalculator(logger logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Calculator{logger: logger}
}

// Describe parses line and computes its clogP and SA score.
func (c *Calculator) Describe(ctx context.Context, line string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	mol, err := Parse(line)
	if err != nil {
		return Record{}, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "invalid SMILES")
	}

	rec := Record{
		SMILES:  mol.SMILES,
		Name:    mol.Name,
		LogP:    CrippenLogP(mol),
		SAScore: SAScore(mol),
	}
	if math.IsNaN(rec.LogP) || math.IsInf(rec.LogP, 0) || math.IsNaN(rec.SAScore) || math.IsInf(rec.SAScore, 0) {
		return Record{}, errors.New(errors.ErrCodeDescriptorFailed, "descriptor is not finite").WithDetail(mol.SMILES)
	}

	c.logger.Debug("descriptors computed",
		logging.String("smiles", rec.SMILES),
		logging.Float64("logp", rec.LogP),
		logging.Float64("sa_score", rec.SAScore),
		logging.Int("atoms", len(mol.Atoms)))
	return rec, nil
}

var _ DescriptorCalculator = (*Calculator)(nil)
