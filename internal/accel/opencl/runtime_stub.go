//go:build !gpu

package opencl

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/ampbench/internal/accel"
)

func enumerate(*slog.Logger) ([]accel.Accelerator, error) {
	return nil, fmt.Errorf("%w: opencl support requires building with '-tags gpu'", accel.ErrNotBuilt)
}
