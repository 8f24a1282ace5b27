package workers

import (
	"errors"

	"github.com/cwbudde/ampbench/internal/accel"
)

var errViewClosed = errors.New("view already closed")

// view keeps a private device-side copy of the host buffer so that transfer
// cost is part of every accelerated call, as it would be on a discrete device.
type view struct {
	host   []float64
	dev    []float64
	access accel.Access
	closed bool
}

func newView(host []float64, access accel.Access) *view {
	dev := make([]float64, len(host))
	if access != accel.WriteOnly {
		copy(dev, host)
	}
	return &view{host: host, dev: dev, access: access}
}

func (v *view) Len() int { return len(v.dev) }

func (v *view) Access() accel.Access { return v.access }

func (v *view) Data() []float64 { return v.dev }

func (v *view) Close() error {
	if v.closed {
		return errViewClosed
	}
	v.closed = true
	v.dev = nil
	return nil
}

func (v *view) flush() error {
	if v.closed {
		return errViewClosed
	}
	if v.access.Writable() {
		copy(v.host, v.dev)
	}
	return nil
}
