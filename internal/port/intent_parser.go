package port

import (
	"context"

	"billvox/internal/intent"
)

// RemoteIntentParser abstracts the optional hosted NLU service. Any non-2xx
// response or transport failure must surface as an error so the caller's
// circuit breaker can count it.
type RemoteIntentParser interface {
	Parse(ctx context.Context, text, userID, locale string) (*intent.Intent, error)
}
