package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"billvox/internal/domain"
	"billvox/internal/port"
)

const correctionCap = 100

type correctionStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]domain.MatchCorrection
}

// NewCorrectionStore returns an in-process CorrectionStore with the same
// FIFO-at-100 semantics as the Redis one. Used when no Redis address is
// configured and in tests.
func NewCorrectionStore() port.CorrectionStore {
	return &correctionStore{entries: make(map[uuid.UUID][]domain.MatchCorrection)}
}

func (s *correctionStore) List(ctx context.Context, businessID uuid.UUID) ([]domain.MatchCorrection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[businessID]
	out := make([]domain.MatchCorrection, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *correctionStore) Append(ctx context.Context, businessID uuid.UUID, correction domain.MatchCorrection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append(s.entries[businessID], correction)
	if len(entries) > correctionCap {
		entries = entries[len(entries)-correctionCap:]
	}
	s.entries[businessID] = entries
	return nil
}
