package workers

import "github.com/cwbudde/ampbench/internal/accel"

// Provider contributes the host worker-pool accelerators. It is always built.
type Provider struct {
	// Workers overrides the pool size of the go:workers device.
	Workers int
}

// Name implements accel.Provider.
func (Provider) Name() string { return "workers" }

// Accelerators returns the pool device and the single-worker debug reference.
func (p Provider) Accelerators() ([]accel.Accelerator, error) {
	return []accel.Accelerator{
		New(Options{Workers: p.Workers}),
		New(Options{Workers: 1, Debug: true, Path: RefPath}),
	}, nil
}
