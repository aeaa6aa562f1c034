package swapnet

import (
	"github.com/pkg/errors"

	"github.com/fumin/swapnet/fermion"
)

var (
	ErrShapeMismatch    = fermion.ErrShapeMismatch
	ErrUnsupportedArity = errors.New("unsupported arity")
	ErrOutOfRangeMode   = errors.New("mode out of range")
	ErrDuplicateMode    = errors.New("duplicate mode")
	// ErrUnencodable is returned when a nonzero constant has no gate to carry it.
	ErrUnencodable = errors.New("unencodable")
)
