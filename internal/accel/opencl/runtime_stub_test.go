//go:build !gpu

package opencl

import (
	"errors"
	"testing"

	"github.com/cwbudde/ampbench/internal/accel"
)

func TestProviderNotBuilt(t *testing.T) {
	list, err := Provider{}.Accelerators()
	if !errors.Is(err, accel.ErrNotBuilt) {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no devices, got %d", len(list))
	}

	reg := accel.NewRegistry(nil, Provider{})
	if _, err := reg.Accelerators(); err != nil {
		t.Fatalf("registry must skip a backend that is not built: %v", err)
	}
}
