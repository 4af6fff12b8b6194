package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrBusinessInactive     = errors.New("business is inactive")
	ErrUserInactive         = errors.New("user is inactive")
	ErrDuplicateEmail       = errors.New("email already exists for this business")
	ErrDuplicateSKU         = errors.New("sku already exists for this business")
	ErrEmptyCart            = errors.New("cart has no lines")
	ErrSplitPaymentMismatch = errors.New("split payment parts do not sum to the grand total")
	ErrMissingPayloadField  = errors.New("invoice payload has an unset required field")
	ErrSessionNotFound      = errors.New("voice session not found")
	ErrNoPendingSuggestions = errors.New("no disambiguation prompt is pending")
	ErrCartLineNotFound     = errors.New("cart line not found")
)
