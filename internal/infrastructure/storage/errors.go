package storage

import (
	"github.com/fulluproar/backoffice/internal/domain/shared"
)

var (
	// ErrAssetNotFound matches shared.ErrNotFound
	ErrAssetNotFound = shared.ErrNotFound.WithMessage("asset not found")
	// ErrInvalidKey is returned for empty keys or keys with path traversal
	ErrInvalidKey = shared.ErrInvalidInput.WithMessage("asset key is empty or escapes the store root")
)
