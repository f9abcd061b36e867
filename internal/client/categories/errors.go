package categories

import "errors"

var (
	ErrNameRequired  = errors.New("category name is required")
	ErrDuplicateName = errors.New("category already exists")
	ErrInvalidColor  = errors.New("color must be a #rrggbb hex value")
	ErrInvalidIcon   = errors.New("unknown category icon")
)
