package constraint

import "errors"

var (
	ErrInvalidJacobian       = errors.New("constraint: invalid jacobian")
	ErrSameClique            = errors.New("constraint: both cliques are the same")
	ErrInvalidClique         = errors.New("constraint: negative clique index")
	ErrInvalidParameter      = errors.New("constraint: invalid parameter")
	ErrInvalidRegularization = errors.New("constraint: regularization must be strictly positive")
	ErrUnknownProjection     = errors.New("constraint: unknown projection")
)
