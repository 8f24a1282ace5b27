package accel

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Registry enumerates the accelerators of every registered provider.
type Registry struct {
	providers []Provider
	logger    *slog.Logger
}

// NewRegistry creates a registry over the given providers. A nil logger
// falls back to slog.Default().
func NewRegistry(logger *slog.Logger, providers ...Provider) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{providers: providers, logger: logger}
}

// Accelerators queries every provider. Providers compiled out of the binary
// contribute nothing; other provider failures are aggregated and returned
// alongside the accelerators that were found.
func (r *Registry) Accelerators() ([]Accelerator, error) {
	var (
		out  []Accelerator
		errs error
	)
	for _, p := range r.providers {
		list, err := p.Accelerators()
		if err != nil {
			if errors.Is(err, ErrNotBuilt) {
				r.logger.Debug("Accelerator backend unavailable", "provider", p.Name(), "error", err)
				continue
			}
			errs = multierror.Append(errs, fmt.Errorf("provider %s: %w", p.Name(), err))
			continue
		}
		r.logger.Debug("Enumerated accelerators", "provider", p.Name(), "count", len(list))
		out = append(out, list...)
	}
	return out, errs
}

// SelectDefault picks the system default accelerator: a physical GPU when
// present, then the first non-debug device, then the first device.
func SelectDefault(list []Accelerator) (Accelerator, error) {
	if len(list) == 0 {
		return nil, ErrNoAccelerator
	}

	for _, a := range list {
		d := a.Describe()
		if d.Kind == DeviceTypeGPU && !d.IsEmulated {
			return a, nil
		}
	}

	for _, a := range list {
		if !a.Describe().IsDebug {
			return a, nil
		}
	}

	return list[0], nil
}

// Find returns the accelerator whose device path matches path
// (case-insensitive). An empty path selects the default accelerator.
func Find(list []Accelerator, path string) (Accelerator, error) {
	path = strings.TrimSpace(path)
	if path == "" || strings.EqualFold(path, "default") {
		return SelectDefault(list)
	}
	for _, a := range list {
		if strings.EqualFold(a.Describe().Path, path) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAccelerator, path)
}

// CloseAll releases accelerators holding device resources.
func CloseAll(list []Accelerator) error {
	var errs error
	for _, a := range list {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	return errs
}
