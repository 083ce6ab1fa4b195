package session

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
)

type memoryEntry struct {
	blob    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory.  Values are stored encoded
// so callers never share a Data value between requests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	logger  logging.Logger
}

// NewMemoryStore creates an empty store whose sessions live for ttl after
// their last use.
func NewMemoryStore(ttl time.Duration, logger logging.Logger) *MemoryStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	e, ok := s.entries[id]
	now := s.now()
	if ok && !now.Before(e.expires) {
		delete(s.entries, id)
		ok = false
	}
	if ok {
		e.expires = now.Add(s.ttl)
		s.entries[id] = e
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return decode(e.blob)
}

func (s *MemoryStore) Save(ctx context.Context, id string, data *Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := encode(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[id] = memoryEntry{blob: blob, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Count returns the number of live sessions.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Backend() string { return BackendMemory }

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired sessions swept", logging.Int("removed", n))
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
