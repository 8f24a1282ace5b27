package accel

import (
	"errors"
	"testing"
)

func TestIndexSpaceTiles(t *testing.T) {
	tests := []struct {
		name   string
		space  IndexSpace
		tiles  int
		padded int
	}{
		{"flat", Flat(10), 1, 10},
		{"flat empty", Flat(0), 0, 0},
		{"exact tiles", Tiled(4096, 1024), 4, 4096},
		{"partial tile", Tiled(1000, 1024), 1, 1024},
		{"partial last tile", Tiled(2049, 1024), 3, 3072},
		{"tiled empty", Tiled(0, 1024), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.space.Tiles(); got != tt.tiles {
				t.Errorf("Tiles() = %d, want %d", got, tt.tiles)
			}
			if got := tt.space.Padded(); got != tt.padded {
				t.Errorf("Padded() = %d, want %d", got, tt.padded)
			}
		})
	}
}

func TestIndexSpaceGlobalSplitRoundTrip(t *testing.T) {
	space := Tiled(5000, 1024)
	for g := 0; g < space.Padded(); g++ {
		tile, off := space.Split(g)
		if off < 0 || off >= space.TileSize {
			t.Fatalf("Split(%d) offset %d out of tile", g, off)
		}
		if back := space.Global(tile, off); back != g {
			t.Fatalf("Global(Split(%d)) = %d", g, back)
		}
	}
}

func TestIndexSpaceTileBounds(t *testing.T) {
	space := Tiled(1000, 256)

	lo, hi := space.TileBounds(0)
	if lo != 0 || hi != 256 {
		t.Errorf("tile 0 = [%d,%d), want [0,256)", lo, hi)
	}

	lo, hi = space.TileBounds(3)
	if lo != 768 || hi != 1000 {
		t.Errorf("last tile = [%d,%d), want [768,1000)", lo, hi)
	}

	if space.Contains(1000) {
		t.Error("index equal to extent must be masked")
	}
	if !space.Contains(999) {
		t.Error("last index should be inside the extent")
	}
}

func TestIndexSpaceValidate(t *testing.T) {
	if err := Tiled(10, 4).Validate(); err != nil {
		t.Fatalf("valid space rejected: %v", err)
	}
	if err := Flat(-1).Validate(); !errors.Is(err, ErrInvalidIndexSpace) {
		t.Errorf("negative extent: got %v", err)
	}
	if err := Tiled(10, -4).Validate(); !errors.Is(err, ErrInvalidIndexSpace) {
		t.Errorf("negative tile size: got %v", err)
	}
}
