package catalogue

import "errors"

var (
	ErrInvalidCatalogue = errors.New("invalid catalogue")
	ErrPackageNotFound  = errors.New("package not found")
	ErrAdNotFound       = errors.New("ad not found")
)
