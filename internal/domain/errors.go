package domain

import "errors"

// Domain errors returned by repository implementations.

var (
	// ErrStoreUnavailable indicates the backing store could not serve a read.
	ErrStoreUnavailable = errors.New("sales store unavailable")

	// ErrUnsupportedField indicates a filter or sort referenced a field the adapter cannot address.
	ErrUnsupportedField = errors.New("unsupported field")

	// ErrUnsupportedClause indicates a filter clause kind the adapter cannot translate.
	ErrUnsupportedClause = errors.New("unsupported clause")
)

// ErrInvalidRecord indicates a sale record could not be stored as given.
var ErrInvalidRecord = errors.New("invalid sale record")
