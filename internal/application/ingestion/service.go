// Package ingestion turns an uploaded SMILES list into a descriptor table.
// A batch is all or nothing: the first bad line aborts it.
package ingestion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/pkg/errors"
)

// maxLineBytes bounds a single line read from a file.  Uploads are much
// smaller; this only matters for CLI input.
const maxLineBytes = 1 << 20

// LineError reports the first line of a batch that could not be described.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// UserMessage is the only text shown to the uploader.
func (e *LineError) UserMessage() string {
	return fmt.Sprintf("Error. Please check line %d of your file.", e.Line)
}

// Service ingests SMILES lists.
type Service interface {
	Ingest(ctx context.Context, r io.Reader) (molecule.Table, error)
	IngestLines(ctx context.Context, lines []string) (molecule.Table, error)
}

type serviceImpl struct {
	calc    molecule.DescriptorCalculator
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService creates an ingestion service.  metrics and logger may be nil.
func NewService(calc molecule.DescriptorCalculator, metrics *prometheus.AppMetrics, logger logging.Logger) Service {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{calc: calc, metrics: metrics, logger: logger}
}

// Ingest reads r line by line.  Line numbers count every physical line,
// including blank ones, which are skipped.
func (s *serviceImpl) Ingest(ctx context.Context, r io.Reader) (molecule.Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUploadUnreadable, "read upload")
	}
	return s.IngestLines(ctx, lines)
}

func (s *serviceImpl) IngestLines(ctx context.Context, lines []string) (molecule.Table, error) {
	timer := prometheus.NewTimer(s.metrics.IngestDuration.WithLabelValues())

	table := make(molecule.Table, 0, len(lines))
	for i, raw := range lines {
		line := cleanLine(raw, i == 0)
		if line == "" {
			continue
		}

		rec, err := s.calc.Describe(ctx, line)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lineErr := &LineError{Line: i + 1, Err: err}
			s.metrics.RecordError("ingestion", string(errors.GetCode(err)))
			s.logger.Info("upload rejected",
				logging.Int("line", lineErr.Line),
				logging.String("content", line),
				logging.Err(err),
				logging.String("cause", errors.RootCause(err).Error()))
			return nil, lineErr
		}
		table = append(table, rec)
	}

	if len(table) == 0 {
		return nil, errors.New(errors.ErrCodeUploadEmpty, "file contains no molecules")
	}

	s.logger.Info("upload ingested",
		logging.Int("molecules", len(table)),
		logging.Int("lines", len(lines)),
		logging.Duration("elapsed", timer.ObserveDuration().Round(time.Microsecond)))
	return table, nil
}

// cleanLine trims surrounding whitespace, a trailing carriage return and, on
// the first line, a UTF-8 byte order mark.
func cleanLine(raw string, first bool) string {
	if first {
		raw = strings.TrimPrefix(raw, "\ufeff")
	}
	return strings.TrimSpace(raw)
}

// AsLineError extracts a *LineError from err's chain.
func AsLineError(err error) (*LineError, bool) {
	var le *LineError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
