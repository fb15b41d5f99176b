package bookshelf

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every input validation failure.
	ErrValidation = errors.New("validation failed")

	ErrNameRequired             = fmt.Errorf("%w: name required", ErrValidation)
	ErrReadPageExceedsPageCount = fmt.Errorf("%w: readPage exceeds pageCount", ErrValidation)

	ErrBookNotFound       = errors.New("book not found")
	ErrVerificationFailed = errors.New("book missing after insert")
)
