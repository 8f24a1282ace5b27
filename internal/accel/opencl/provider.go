// Package opencl exposes OpenCL devices as accelerators. The backend is only
// compiled with the gpu build tag; without it enumeration reports
// accel.ErrNotBuilt and the registry skips the provider.
package opencl

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/ampbench/internal/accel"
)

// Provider enumerates OpenCL devices.
type Provider struct {
	Logger *slog.Logger
}

// Name implements accel.Provider.
func (Provider) Name() string { return "opencl" }

// Accelerators implements accel.Enumerator. Every call returns a fresh set
// of devices; release them with accel.CloseAll.
func (p Provider) Accelerators() ([]accel.Accelerator, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return enumerate(logger)
}

// devicePath formats the path of a device from its platform and device ordinals.
func devicePath(platform, device int) string {
	return fmt.Sprintf("opencl:%d:%d", platform, device)
}

// fp64Pragma returns the extension pragma enabling double precision on a
// device, or "" when the device has none.
func fp64Pragma(d accel.Descriptor) string {
	switch {
	case d.SupportsDoublePrecision:
		return "#pragma OPENCL EXTENSION cl_khr_fp64 : enable\n"
	case d.SupportsLimitedDoublePrecision:
		return "#pragma OPENCL EXTENSION cl_amd_fp64 : enable\n"
	default:
		return ""
	}
}

// checkSpace rejects index spaces the add kernel's int arguments or the
// device's work-group limit cannot express. A maxGroup of 0 means unknown.
func checkSpace(space accel.IndexSpace, maxGroup int) error {
	if err := space.Validate(); err != nil {
		return err
	}
	if space.Padded() > math.MaxInt32 {
		return fmt.Errorf("%w: extent %d exceeds the OpenCL int range", accel.ErrInvalidIndexSpace, space.Padded())
	}
	if space.IsTiled() && maxGroup > 0 && space.TileSize > maxGroup {
		return fmt.Errorf("%w: tile size %d exceeds the device work-group limit %d",
			accel.ErrInvalidIndexSpace, space.TileSize, maxGroup)
	}
	return nil
}
