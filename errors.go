package listset

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// ErrReservedKey is the cause of the panic raised when a sentinel key is passed
// to Add, Remove or Contains.
var ErrReservedKey = errors.New("listset: key is reserved for a sentinel")

func checkKey[T constraints.Integer](x, lo, hi T) error {
	switch x {
	case lo:
		return errors.Wrapf(ErrReservedKey, "key %d is the lower bound", x)
	case hi:
		return errors.Wrapf(ErrReservedKey, "key %d is the upper bound", x)
	}
	return nil
}
