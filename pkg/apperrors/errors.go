package apperrors

import "errors"

var (
	ErrEmptyTable        = errors.New("table is empty")
	ErrUnsupportedFormat = errors.New("unsupported table format")
	ErrNoFileColumns     = errors.New("no file columns in table")
	ErrStrictValidation  = errors.New("strict validation failed")
)
