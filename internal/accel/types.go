package accel

import "context"

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/cwbudde/ampbench/internal/accel Accelerator,View

// DeviceType describes the class of a compute device.
type DeviceType string

const (
	DeviceTypeGPU         DeviceType = "GPU"
	DeviceTypeCPU         DeviceType = "CPU"
	DeviceTypeAccelerator DeviceType = "Accelerator"
	DeviceTypeUnknown     DeviceType = "Unknown"
)

// Descriptor is an immutable snapshot of an accelerator's capabilities.
type Descriptor struct {
	Description     string
	Path            string
	Kind            DeviceType
	DedicatedMemory uint64 // bytes

	HasDisplay                     bool
	IsDebug                        bool
	IsEmulated                     bool
	SupportsDoublePrecision        bool
	SupportsLimitedDoublePrecision bool
}

// Float64 reports whether the device can add double-precision values.
// Limited double precision covers addition.
func (d Descriptor) Float64() bool {
	return d.SupportsDoublePrecision || d.SupportsLimitedDoublePrecision
}

// DedicatedMemoryMB returns the dedicated memory in mebibytes.
func (d Descriptor) DedicatedMemoryMB() float64 {
	return float64(d.DedicatedMemory) / (1024.0 * 1024.0)
}

// Access describes how a kernel uses a staged view.
type Access int

const (
	// ReadOnly views are copied to the device and never copied back.
	ReadOnly Access = iota
	// ReadWrite views are copied to the device and back on Synchronize.
	ReadWrite
	// WriteOnly views skip the upload; their previous host contents are discarded.
	WriteOnly
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case WriteOnly:
		return "write-only"
	default:
		return "unknown"
	}
}

// Writable reports whether Synchronize copies the view back to the host.
func (a Access) Writable() bool {
	return a == ReadWrite || a == WriteOnly
}

// View is a device-addressable projection of a host buffer, valid for one dispatch.
type View interface {
	// Len returns the number of elements in the view.
	Len() int

	// Access returns the access mode the view was staged with.
	Access() Access

	// Data returns device storage that host-executed kernels can address
	// directly. Devices with opaque memory return nil.
	Data() []float64

	// Close releases the device storage. The host buffer is untouched.
	Close() error
}

// Kernel is the per-index body executed by every task of a dispatch.
// Run is called concurrently for distinct global indices.
type Kernel interface {
	Name() string
	Run(global int)
}

// SourceKernel is a kernel that devices executing native code can compile.
// Args are bound in order; the runtime appends the index-space extent as a
// trailing int argument.
type SourceKernel interface {
	Kernel
	Source() string
	Args() []View
}

// Accelerator is a compute device able to run data-parallel kernels.
type Accelerator interface {
	// Describe returns a snapshot of the device's capabilities.
	Describe() Descriptor

	// Stage projects a host buffer into device memory.
	Stage(host []float64, access Access) (View, error)

	// Dispatch runs k once per index of space. It returns once every task has
	// been scheduled; results are visible on the host only after Synchronize.
	Dispatch(ctx context.Context, space IndexSpace, k Kernel) error

	// Synchronize blocks until outstanding work completes and copies a
	// writable view back into its host buffer.
	Synchronize(ctx context.Context, v View) error
}

// Enumerator lists the accelerators currently available.
// Every call returns a fresh snapshot.
type Enumerator interface {
	Accelerators() ([]Accelerator, error)
}

// Provider contributes the accelerators of one backend to a Registry.
type Provider interface {
	Enumerator
	Name() string
}
