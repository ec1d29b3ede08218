package xsd

import "errors"

// Structural errors. Any of these means the source schema is
// inconsistent and conversion cannot continue.
var (
	ErrNotSchema           = errors.New("document root is not <xs:schema>")
	ErrTypeNotFound        = errors.New("type definition not found")
	ErrMultipleExtensions  = errors.New("complex type has more than one extension clause")
	ErrUndeclaredSupertype = errors.New("supertype is not declared")
	ErrMalformed           = errors.New("malformed declaration")
)
