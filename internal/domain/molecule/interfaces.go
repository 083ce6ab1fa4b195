package molecule

import (
	"context"
)

// DescriptorCalculator turns one input line into a table record.
type DescriptorCalculator interface {
	Describe(ctx context.Context, line string) (Record, error)
}

// ImageRenderer draws a 2D depiction of a molecule as PNG bytes.
type ImageRenderer interface {
	RenderPNG(ctx context.Context, mol *Molecule) ([]byte, error)
}
