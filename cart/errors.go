package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrOutOfStock      = errors.New("not enough stock")
	ErrSubproductGone  = errors.New("subproduct does not exist")
	ErrNoIdentity      = errors.New("neither user nor session identity present")
)
