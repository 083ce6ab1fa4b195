package session

import (
	"context"
	"time"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/pkg/errors"
)

// Instrumented records the latency and outcome of every call on the wrapped
// Store.  A missing session is not counted as an error.
type Instrumented struct {
	Store
	metrics *prometheus.AppMetrics
}

func NewInstrumented(store Store, metrics *prometheus.AppMetrics) *Instrumented {
	return &Instrumented{Store: store, metrics: metrics}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.metrics.RecordSessionOp(s.Backend(), op, time.Since(start), err)
}

func (s *Instrumented) Load(ctx context.Context, id string) (*Data, error) {
	start := time.Now()
	d, err := s.Store.Load(ctx, id)
	s.observe("load", start, err)
	return d, err
}

func (s *Instrumented) Save(ctx context.Context, id string, data *Data) error {
	start := time.Now()
	err := s.Store.Save(ctx, id, data)
	s.observe("save", start, err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, id)
	s.observe("delete", start, err)
	return err
}

// Count also publishes the result on the active sessions gauge.
func (s *Instrumented) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := s.Store.Count(ctx)
	s.observe("count", start, err)
	if err == nil {
		s.metrics.ActiveSessions.WithLabelValues(s.Backend()).Set(float64(n))
	}
	return n, err
}
