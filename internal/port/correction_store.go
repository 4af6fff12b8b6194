package port

import (
	"context"

	"github.com/google/uuid"

	"billvox/internal/domain"
)

// CorrectionStore is the matcher learning log. Implementations keep the 100
// most-recent entries per business and evict oldest-first. The matcher itself
// stays pure; it only ever sees the snapshot List returns.
type CorrectionStore interface {
	List(ctx context.Context, businessID uuid.UUID) ([]domain.MatchCorrection, error)
	Append(ctx context.Context, businessID uuid.UUID, correction domain.MatchCorrection) error
}
