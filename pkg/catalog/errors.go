package catalog

import "errors"

var (
	ErrNotOpen         = errors.New("catalog store is not open")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("no such entry")
	ErrExhausted       = errors.New("search exhausted")
	ErrBadRecord       = errors.New("malformed record")
)
