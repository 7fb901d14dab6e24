package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrHeaderParse      = errors.New("header parse failed")
	ErrCorpusMissing    = errors.New("corpus root not found")
	ErrNotTextDocument  = errors.New("not a text document")
	ErrValidationFailed = errors.New("validation failed")
)
