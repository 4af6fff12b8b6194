package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billvox/internal/domain"
)

func TestCorrectionStore_AppendAndList(t *testing.T) {
	store := NewCorrectionStore()
	businessID := uuid.New()

	err := store.Append(context.Background(), businessID, domain.MatchCorrection{Query: "colgate", ProductName: "Colgate MaxFresh 150g"})
	require.NoError(t, err)

	got, err := store.List(context.Background(), businessID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "colgate", got[0].Query)
}

func TestCorrectionStore_FIFOEvictionAtCap(t *testing.T) {
	store := NewCorrectionStore()
	businessID := uuid.New()

	for i := 0; i < 105; i++ {
		err := store.Append(context.Background(), businessID, domain.MatchCorrection{Query: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
	}

	got, err := store.List(context.Background(), businessID)
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, "q5", got[0].Query, "oldest five entries evicted")
	assert.Equal(t, "q104", got[99].Query)
}

func TestCorrectionStore_IsolatedPerBusiness(t *testing.T) {
	store := NewCorrectionStore()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, store.Append(context.Background(), a, domain.MatchCorrection{Query: "atta"}))

	got, err := store.List(context.Background(), b)
	require.NoError(t, err)
	assert.Empty(t, got)
}
