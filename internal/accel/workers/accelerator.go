package workers

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cwbudde/ampbench/internal/accel"
	"golang.org/x/sys/cpu"
)

const (
	// PoolPath identifies the multi-worker host accelerator.
	PoolPath = "go:workers"
	// RefPath identifies the single-worker reference accelerator.
	RefPath = "go:ref"

	// ctxCheckInterval is the number of indices a worker executes between
	// cancellation checks in a flat dispatch.
	ctxCheckInterval = 1 << 16
)

// lineElems is the number of float64 values per cache line. Flat chunks are
// aligned to it so neighbouring workers never write the same line.
var lineElems = func() int {
	n := int(unsafe.Sizeof(cpu.CacheLinePad{})) / 8
	if n < 1 {
		return 1
	}
	return n
}()

// Options configures a worker-pool accelerator.
type Options struct {
	// Workers is the number of goroutines executing tasks.
	// Zero means runtime.NumCPU().
	Workers int

	// Debug enables index coverage checking: every dispatch fails unless
	// each index of the space ran exactly once.
	Debug bool

	// Path overrides the device path. Defaults to PoolPath.
	Path string
}

// Accelerator executes kernels on a pool of goroutines. It is emulated: the
// "device memory" is a private host allocation per view.
type Accelerator struct {
	desc    accel.Descriptor
	workers int
	debug   bool
}

// New creates a worker-pool accelerator.
func New(opts Options) *Accelerator {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	path := opts.Path
	if path == "" {
		path = PoolPath
	}

	return &Accelerator{
		desc: accel.Descriptor{
			Description:                    describeHost(workers),
			Path:                           path,
			Kind:                           accel.DeviceTypeCPU,
			DedicatedMemory:                hostMemory(),
			IsDebug:                        opts.Debug,
			IsEmulated:                     true,
			SupportsDoublePrecision:        true,
			SupportsLimitedDoublePrecision: true,
		},
		workers: workers,
		debug:   opts.Debug,
	}
}

// Describe implements accel.Accelerator.
func (a *Accelerator) Describe() accel.Descriptor {
	return a.desc
}

// Workers returns the number of goroutines used per dispatch.
func (a *Accelerator) Workers() int {
	return a.workers
}

// Stage implements accel.Accelerator.
func (a *Accelerator) Stage(host []float64, access accel.Access) (accel.View, error) {
	return newView(host, access), nil
}

// Synchronize implements accel.Accelerator. Dispatch already joins every
// worker, so only the copy back to the host remains.
func (a *Accelerator) Synchronize(_ context.Context, v accel.View) error {
	wv, ok := v.(*view)
	if !ok {
		return fmt.Errorf("view of type %T was not staged by %s", v, a.desc.Path)
	}
	return wv.flush()
}

// Dispatch implements accel.Accelerator.
func (a *Accelerator) Dispatch(ctx context.Context, space accel.IndexSpace, k accel.Kernel) error {
	if err := space.Validate(); err != nil {
		return err
	}
	if space.Extent == 0 {
		return nil
	}

	var cov *coverage
	if a.debug {
		cov = newCoverage(k, space.Extent)
		k = cov
	}

	var err error
	if space.IsTiled() {
		err = a.dispatchTiled(ctx, space, k)
	} else {
		err = a.dispatchFlat(ctx, space, k)
	}
	if err != nil {
		return err
	}

	if cov != nil {
		return cov.verify()
	}
	return nil
}

// dispatchFlat splits [0, N) into one contiguous, cache-line aligned chunk per worker.
func (a *Accelerator) dispatchFlat(ctx context.Context, space accel.IndexSpace, k accel.Kernel) error {
	n := space.Extent
	chunk := (n + a.workers - 1) / a.workers
	chunk = (chunk + lineElems - 1) / lineElems * lineElems

	var (
		wg   sync.WaitGroup
		errs firstError
	)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer errs.recover(k)

			for lo := start; lo < end; lo += ctxCheckInterval {
				if err := ctx.Err(); err != nil {
					errs.set(err)
					return
				}
				hi := lo + ctxCheckInterval
				if hi > end {
					hi = end
				}
				for i := lo; i < hi; i++ {
					k.Run(i)
				}
			}
		}(start, end)
	}

	wg.Wait()
	return errs.get()
}

// dispatchTiled hands out tiles to the workers through a channel. Each task
// is addressed by (tile, offset); offsets past the extent are masked.
func (a *Accelerator) dispatchTiled(ctx context.Context, space accel.IndexSpace, k accel.Kernel) error {
	tiles := space.Tiles()
	workers := a.workers
	if tiles < workers {
		workers = tiles
	}

	tileCh := make(chan int)
	var (
		wg   sync.WaitGroup
		errs firstError
	)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for tile := range tileCh {
				// Keep draining after a failure so the feeder never blocks.
				if errs.get() != nil {
					continue
				}
				runTile(space, tile, k, &errs)
			}
		}()
	}

feed:
	for tile := 0; tile < tiles; tile++ {
		if errs.get() != nil {
			break
		}
		if err := ctx.Err(); err != nil {
			errs.set(err)
			break
		}
		select {
		case tileCh <- tile:
		case <-ctx.Done():
			errs.set(ctx.Err())
			break feed
		}
	}
	close(tileCh)

	wg.Wait()
	return errs.get()
}

func runTile(space accel.IndexSpace, tile int, k accel.Kernel, errs *firstError) {
	defer errs.recover(k)

	for off := 0; off < space.TileSize; off++ {
		g := space.Global(tile, off)
		if !space.Contains(g) {
			return
		}
		k.Run(g)
	}
}

// firstError keeps the first failure reported by any worker.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// recover turns a kernel panic into a dispatch failure. Must be deferred.
func (f *firstError) recover(k accel.Kernel) {
	if r := recover(); r != nil {
		f.set(fmt.Errorf("kernel %s panicked: %v", k.Name(), r))
	}
}

// coverage wraps a kernel and counts how often each index runs.
type coverage struct {
	accel.Kernel
	hits []atomic.Uint32
}

func newCoverage(k accel.Kernel, n int) *coverage {
	return &coverage{Kernel: k, hits: make([]atomic.Uint32, n)}
}

func (c *coverage) Run(global int) {
	c.hits[global].Add(1)
	c.Kernel.Run(global)
}

func (c *coverage) verify() error {
	for i := range c.hits {
		if n := c.hits[i].Load(); n != 1 {
			return fmt.Errorf("index %d executed %d times", i, n)
		}
	}
	return nil
}
