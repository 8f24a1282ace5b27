package tune

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/ampbench/internal/accel"
	"github.com/cwbudde/ampbench/internal/accel/workers"
)

// gridOptimizer evaluates evenly spaced points of [lower, upper].
type gridOptimizer struct {
	points int
}

func (g gridOptimizer) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	var (
		best     []float64
		bestCost float64
	)
	for i := 0; i < g.points; i++ {
		x := []float64{lower[0] + (upper[0]-lower[0])*float64(i)/float64(g.points-1)}
		if c := eval(x); best == nil || c < bestCost {
			best, bestCost = x, c
		}
	}
	return best, bestCost
}

func TestTileSizeAt(t *testing.T) {
	tests := []struct {
		x    float64
		want int
	}{
		{-1, 16},
		{0, 16},
		{0.5, 256},
		{1, 4096},
		{2, 4096},
		{0.06, 16},
		{0.07, 32},
	}
	for _, tt := range tests {
		if got := TileSizeAt(tt.x); got != tt.want {
			t.Errorf("TileSizeAt(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func newTestSearch(t *testing.T, measure measureFunc) *TileSearch {
	t.Helper()

	s, err := NewTileSearch(workers.New(workers.Options{Workers: 2}), gridOptimizer{points: 33}, Config{Size: 64})
	if err != nil {
		t.Fatalf("NewTileSearch: %v", err)
	}
	if measure != nil {
		s.measure = measure
	}
	return s
}

func TestTileSearchFindsMinimum(t *testing.T) {
	calls := make(map[int]int)
	s := newTestSearch(t, func(_ context.Context, ts int) (time.Duration, error) {
		calls[ts]++
		d := ts - 512
		if d < 0 {
			d = -d
		}
		return time.Duration(d+1) * time.Microsecond, nil
	})

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TileSize != 512 {
		t.Errorf("TileSize = %d, want 512", res.TileSize)
	}
	if len(res.Trials) != MaxTileExp-MinTileExp+1 {
		t.Errorf("expected every power of two to be tried once, got %d trials", len(res.Trials))
	}
	for ts, n := range calls {
		if n != 1 {
			t.Errorf("tile size %d measured %d times", ts, n)
		}
	}
	for i := 1; i < len(res.Trials); i++ {
		if res.Trials[i-1].TileSize >= res.Trials[i].TileSize {
			t.Fatalf("trials not ordered by tile size: %+v", res.Trials)
		}
	}
}

func TestTileSearchSkipsFailingCandidates(t *testing.T) {
	s := newTestSearch(t, func(_ context.Context, ts int) (time.Duration, error) {
		if ts < 1024 {
			return 0, errors.New("CL_INVALID_WORK_GROUP_SIZE")
		}
		return time.Duration(ts) * time.Microsecond, nil
	})

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TileSize != 1024 {
		t.Errorf("TileSize = %d, want 1024", res.TileSize)
	}
}

func TestTileSearchAllCandidatesFail(t *testing.T) {
	boom := errors.New("device lost")
	s := newTestSearch(t, func(context.Context, int) (time.Duration, error) {
		return 0, boom
	})

	if _, err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected aggregated device error, got %v", err)
	}
}

func TestTileSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSearch(t, nil)
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTileSearchOnWorkerPool(t *testing.T) {
	s, err := NewTileSearch(workers.New(workers.Options{Workers: 2}), NewMayfly(3, 20, 7), Config{Size: 4096, Repeat: 1})
	if err != nil {
		t.Fatalf("NewTileSearch: %v", err)
	}

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TileSize < 1<<MinTileExp || res.TileSize > 1<<MaxTileExp {
		t.Errorf("tile size %d out of range", res.TileSize)
	}
}

func TestNewTileSearchValidation(t *testing.T) {
	if _, err := NewTileSearch(nil, gridOptimizer{points: 2}, Config{}); !errors.Is(err, accel.ErrNoAccelerator) {
		t.Errorf("nil accelerator: got %v", err)
	}
	if _, err := NewTileSearch(workers.New(workers.Options{}), nil, Config{}); err == nil {
		t.Error("nil optimizer should be rejected")
	}
	if _, err := NewTileSearch(workers.New(workers.Options{}), gridOptimizer{points: 2}, Config{Size: -1}); err == nil {
		t.Error("negative size should be rejected")
	}
}
