package accel

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccelerator is returned when no compatible accelerator is available.
	ErrNoAccelerator = errors.New("no compatible accelerator found")
	// ErrNotBuilt indicates a backend was compiled out of this binary.
	ErrNotBuilt = errors.New("accelerator backend not built")
	// ErrDoublePrecision indicates the device cannot execute double-precision kernels.
	ErrDoublePrecision = errors.New("accelerator does not support double precision")
	// ErrUnsupportedKernel indicates the device cannot execute the given kernel.
	ErrUnsupportedKernel = errors.New("kernel not supported by accelerator")
	// ErrInvalidIndexSpace is returned for negative extents or tile sizes.
	ErrInvalidIndexSpace = errors.New("invalid index space")
)

// DispatchError reports a device-runtime failure during one step of an
// accelerated call (stage, dispatch or synchronize).
type DispatchError struct {
	Accelerator string // device path
	Op          string
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("accelerator %s: %s: %v", e.Accelerator, e.Op, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// WrapDispatch attaches device context to err. Errors that already carry a
// DispatchError are returned unchanged; nil stays nil.
func WrapDispatch(path, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DispatchError
	if errors.As(err, &de) {
		return err
	}
	return &DispatchError{Accelerator: path, Op: op, Err: err}
}
