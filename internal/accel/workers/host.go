package workers

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// describeHost names the host processor backing the pool.
func describeHost(workers int) string {
	brand := strings.TrimSpace(cpuid.CPU.BrandName)
	if brand == "" {
		brand = runtime.GOARCH
	}
	if cores := cpuid.CPU.LogicalCores; cores > 0 {
		return fmt.Sprintf("%s, %d logical cores (Go worker pool, %d workers)", brand, cores, workers)
	}
	return fmt.Sprintf("%s (Go worker pool, %d workers)", brand, workers)
}
