package accel

import "fmt"

// IndexSpace is the one-dimensional domain of a dispatch. A zero TileSize
// means a flat space; otherwise indices are grouped into contiguous tiles and
// addressed by (tile, offset). A final partial tile is allowed: tasks whose
// global index falls past Extent are masked.
type IndexSpace struct {
	Extent   int
	TileSize int
}

// Flat returns an untiled index space over [0, n).
func Flat(n int) IndexSpace {
	return IndexSpace{Extent: n}
}

// Tiled returns an index space over [0, n) grouped in tiles of size ts.
func Tiled(n, ts int) IndexSpace {
	return IndexSpace{Extent: n, TileSize: ts}
}

// Validate rejects negative extents and tile sizes.
func (s IndexSpace) Validate() error {
	if s.Extent < 0 {
		return fmt.Errorf("%w: extent %d", ErrInvalidIndexSpace, s.Extent)
	}
	if s.TileSize < 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidIndexSpace, s.TileSize)
	}
	return nil
}

// IsTiled reports whether the space is partitioned into tiles.
func (s IndexSpace) IsTiled() bool {
	return s.TileSize > 0
}

// Tiles returns the number of tiles, counting a partial final tile.
// A flat space is a single tile.
func (s IndexSpace) Tiles() int {
	if !s.IsTiled() {
		if s.Extent == 0 {
			return 0
		}
		return 1
	}
	return (s.Extent + s.TileSize - 1) / s.TileSize
}

// Padded returns the extent rounded up to a whole number of tiles.
func (s IndexSpace) Padded() int {
	if !s.IsTiled() {
		return s.Extent
	}
	return s.Tiles() * s.TileSize
}

// Global maps a tile identifier and an offset within the tile to a flat index.
func (s IndexSpace) Global(tile, offset int) int {
	if !s.IsTiled() {
		return offset
	}
	return tile*s.TileSize + offset
}

// Split is the inverse of Global.
func (s IndexSpace) Split(global int) (tile, offset int) {
	if !s.IsTiled() {
		return 0, global
	}
	return global / s.TileSize, global % s.TileSize
}

// Contains reports whether a global index lies inside the unpadded extent.
func (s IndexSpace) Contains(global int) bool {
	return global >= 0 && global < s.Extent
}

// TileBounds returns the half-open global range covered by tile, clipped to
// the extent.
func (s IndexSpace) TileBounds(tile int) (lo, hi int) {
	if !s.IsTiled() {
		return 0, s.Extent
	}
	lo = tile * s.TileSize
	hi = lo + s.TileSize
	if hi > s.Extent {
		hi = s.Extent
	}
	return lo, hi
}

func (s IndexSpace) String() string {
	if !s.IsTiled() {
		return fmt.Sprintf("flat[%d]", s.Extent)
	}
	return fmt.Sprintf("tiled[%d/%d]", s.Extent, s.TileSize)
}
