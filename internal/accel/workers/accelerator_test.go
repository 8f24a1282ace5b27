package workers

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/ampbench/internal/accel"
)

type funcKernel struct {
	name string
	fn   func(int)
}

func (k funcKernel) Name() string   { return k.name }
func (k funcKernel) Run(global int) { k.fn(global) }

func stageAdd(t *testing.T, a *Accelerator, v1, v2, v3 []float64) (accel.Kernel, accel.View) {
	t.Helper()

	in1, err := a.Stage(v1, accel.ReadOnly)
	if err != nil {
		t.Fatalf("stage v1: %v", err)
	}
	in2, err := a.Stage(v2, accel.ReadOnly)
	if err != nil {
		t.Fatalf("stage v2: %v", err)
	}
	out, err := a.Stage(v3, accel.WriteOnly)
	if err != nil {
		t.Fatalf("stage v3: %v", err)
	}

	x, y, z := in1.Data(), in2.Data(), out.Data()
	return funcKernel{name: "add", fn: func(i int) { z[i] = x[i] + y[i] }}, out
}

func TestDispatchAdds(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		space func(n int) accel.IndexSpace
		opts  Options
	}{
		{"flat", 10000, accel.Flat, Options{Workers: 4}},
		{"flat single worker", 777, accel.Flat, Options{Workers: 1}},
		{"tiled exact", 4096, func(n int) accel.IndexSpace { return accel.Tiled(n, 1024) }, Options{Workers: 3}},
		{"tiled partial", 1000, func(n int) accel.IndexSpace { return accel.Tiled(n, 1024) }, Options{Workers: 4}},
		{"tiled partial last", 5000, func(n int) accel.IndexSpace { return accel.Tiled(n, 256) }, Options{Workers: 8}},
		{"debug flat", 2048, accel.Flat, Options{Workers: 1, Debug: true}},
		{"debug tiled", 1500, func(n int) accel.IndexSpace { return accel.Tiled(n, 64) }, Options{Workers: 1, Debug: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v1 := make([]float64, tt.n)
			v2 := make([]float64, tt.n)
			v3 := make([]float64, tt.n)
			for i := range v1 {
				v1[i] = float64(i)
				v2[i] = 0.5 * float64(i)
			}

			a := New(tt.opts)
			k, out := stageAdd(t, a, v1, v2, v3)
			if err := a.Dispatch(context.Background(), tt.space(tt.n), k); err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if err := a.Synchronize(context.Background(), out); err != nil {
				t.Fatalf("Synchronize: %v", err)
			}

			for i := range v3 {
				if want := v1[i] + v2[i]; v3[i] != want {
					t.Fatalf("v3[%d] = %v, want %v", i, v3[i], want)
				}
			}
		})
	}
}

func TestDispatchEmptySpace(t *testing.T) {
	a := New(Options{Workers: 2})
	var calls atomic.Int64
	k := funcKernel{name: "count", fn: func(int) { calls.Add(1) }}

	for _, space := range []accel.IndexSpace{accel.Flat(0), accel.Tiled(0, 1024)} {
		if err := a.Dispatch(context.Background(), space, k); err != nil {
			t.Fatalf("%s: %v", space, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("kernel ran %d times on an empty space", calls.Load())
	}
}

func TestDispatchMasksPaddedTasks(t *testing.T) {
	a := New(Options{Workers: 2})
	space := accel.Tiled(1000, 1024)
	seen := make([]atomic.Int32, space.Padded())
	k := funcKernel{name: "mark", fn: func(i int) { seen[i].Add(1) }}

	if err := a.Dispatch(context.Background(), space, k); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	for i := range seen {
		want := int32(0)
		if i < space.Extent {
			want = 1
		}
		if got := seen[i].Load(); got != want {
			t.Fatalf("index %d ran %d times, want %d", i, got, want)
		}
	}
}

func TestDispatchRecoversKernelPanic(t *testing.T) {
	for _, space := range []accel.IndexSpace{accel.Flat(4096), accel.Tiled(4096, 128)} {
		t.Run(space.String(), func(t *testing.T) {
			a := New(Options{Workers: 4})
			k := funcKernel{name: "boom", fn: func(i int) {
				if i == 100 {
					panic("out of range")
				}
			}}

			err := a.Dispatch(context.Background(), space, k)
			if err == nil {
				t.Fatal("expected an error from a panicking kernel")
			}
			if !strings.Contains(err.Error(), "kernel boom panicked") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDispatchHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(Options{Workers: 2})
	k := funcKernel{name: "noop", fn: func(int) {}}

	for _, space := range []accel.IndexSpace{accel.Flat(1 << 10), accel.Tiled(1<<10, 16)} {
		if err := a.Dispatch(ctx, space, k); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", space, err)
		}
	}
}

func TestDispatchRejectsInvalidSpace(t *testing.T) {
	a := New(Options{})
	k := funcKernel{name: "noop", fn: func(int) {}}
	if err := a.Dispatch(context.Background(), accel.Flat(-1), k); !errors.Is(err, accel.ErrInvalidIndexSpace) {
		t.Fatalf("expected ErrInvalidIndexSpace, got %v", err)
	}
}

func TestDebugCoverageDetectsDuplicates(t *testing.T) {
	cov := newCoverage(funcKernel{name: "noop", fn: func(int) {}}, 4)
	for _, i := range []int{0, 1, 1, 2, 3} {
		cov.Run(i)
	}
	if err := cov.verify(); err == nil || !strings.Contains(err.Error(), "index 1 executed 2 times") {
		t.Fatalf("expected duplicate detection, got %v", err)
	}
}

func TestViewLifecycle(t *testing.T) {
	host := []float64{1, 2, 3}

	ro := newView(host, accel.ReadOnly)
	ro.Data()[0] = 42
	if err := ro.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if host[0] != 1 {
		t.Error("read-only view must not be copied back")
	}

	wo := newView(host, accel.WriteOnly)
	if wo.Data()[1] != 0 {
		t.Error("write-only view must not upload host data")
	}
	wo.Data()[1] = 7
	if err := wo.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if host[1] != 7 {
		t.Errorf("write-only view not copied back: %v", host)
	}

	if err := wo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wo.Close(); !errors.Is(err, errViewClosed) {
		t.Errorf("second Close: got %v", err)
	}
	if err := wo.flush(); !errors.Is(err, errViewClosed) {
		t.Errorf("flush after Close: got %v", err)
	}
}

func TestSynchronizeRejectsForeignView(t *testing.T) {
	a := New(Options{})
	foreign := accelViewStub{}
	if err := a.Synchronize(context.Background(), foreign); err == nil {
		t.Fatal("expected an error for a view staged elsewhere")
	}
}

type accelViewStub struct{}

func (accelViewStub) Len() int             { return 0 }
func (accelViewStub) Access() accel.Access { return accel.ReadOnly }
func (accelViewStub) Data() []float64      { return nil }
func (accelViewStub) Close() error         { return nil }

func TestProviderDevices(t *testing.T) {
	list, err := Provider{Workers: 3}.Accelerators()
	if err != nil {
		t.Fatalf("Accelerators: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(list))
	}

	pool, ref := list[0].Describe(), list[1].Describe()
	if pool.Path != PoolPath || pool.IsDebug || !pool.IsEmulated || !pool.Float64() {
		t.Errorf("unexpected pool descriptor: %+v", pool)
	}
	if ref.Path != RefPath || !ref.IsDebug {
		t.Errorf("unexpected reference descriptor: %+v", ref)
	}
	if got := list[0].(*Accelerator).Workers(); got != 3 {
		t.Errorf("pool workers = %d, want 3", got)
	}

	def, err := accel.SelectDefault(list)
	if err != nil || def.Describe().Path != PoolPath {
		t.Errorf("default device should be the pool, got %v (%v)", def, err)
	}
}
