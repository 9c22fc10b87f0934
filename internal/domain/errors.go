package domain

import "errors"

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrFetchFailed      = errors.New("fetch failed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrCatalogNotFound  = errors.New("catalog not found")
	ErrInvalidDirection = errors.New("invalid vote direction")
	ErrInvalidPageSize  = errors.New("invalid page size")
)
