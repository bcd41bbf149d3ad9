package main

import "math/rand"

const (
	SpatialCellSize = 80.0 // 2x largest entity radius (RockRadius=40)
	SpatialCols     = 51   // ceil(4000/80) + 1
	SpatialRows     = 51

	// Free gives up after this many rejected samples
	freeAttempts = 100
)

// ShapePair is one overlapping pair reported by All
type ShapePair struct {
	A, B Shape
}

// Bounds is an axis-aligned sampling rectangle for Free
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// WorldBounds covers the whole map, inset so entities spawn fully inside
func WorldBounds(radius float64) Bounds {
	return Bounds{
		MinX: radius, MinY: radius,
		MaxX: WorldWidth - radius, MaxY: WorldHeight - radius,
	}
}

// Index tracks every solid entity's shape and answers overlap queries. It is
// a uniform grid: each shape lives in the cell under its center, and because
// the cell size is at least the largest possible radius sum, any overlapping
// pair sits in the same or adjacent cells.
//
// Index knows nothing about game semantics; callers decide what an overlap
// means. It is not safe for concurrent use — the owning game's lock guards it.
type Index struct {
	shapes map[string]Shape
	cells  [SpatialCols * SpatialRows][]string
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{shapes: make(map[string]Shape)}
}

func cellIdx(x, y float64) int {
	cx := int(x / SpatialCellSize)
	cy := int(y / SpatialCellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= SpatialCols {
		cx = SpatialCols - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= SpatialRows {
		cy = SpatialRows - 1
	}
	return cy*SpatialCols + cx
}

// overlaps reports strict circle overlap: tangent circles do not collide
func overlaps(a, b Shape) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	radSum := a.Radius + b.Radius
	return dx*dx+dy*dy < radSum*radSum
}

// Update inserts the shape by its identifier, or replaces its stored
// geometry if already present. Never fails.
func (ix *Index) Update(s Shape) {
	if old, ok := ix.shapes[s.ID]; ok {
		oldCell := cellIdx(old.X, old.Y)
		newCell := cellIdx(s.X, s.Y)
		if oldCell != newCell {
			ix.evict(oldCell, s.ID)
			ix.cells[newCell] = append(ix.cells[newCell], s.ID)
		}
	} else {
		cell := cellIdx(s.X, s.Y)
		ix.cells[cell] = append(ix.cells[cell], s.ID)
	}
	ix.shapes[s.ID] = s
}

// Remove deletes the stored geometry for this identifier; no-op if absent
func (ix *Index) Remove(s Shape) {
	old, ok := ix.shapes[s.ID]
	if !ok {
		return
	}
	ix.evict(cellIdx(old.X, old.Y), s.ID)
	delete(ix.shapes, s.ID)
}

func (ix *Index) evict(cell int, id string) {
	ids := ix.cells[cell]
	for i, v := range ids {
		if v == id {
			ids[i] = ids[len(ids)-1]
			ix.cells[cell] = ids[:len(ids)-1]
			return
		}
	}
}

// Test returns the stored shapes overlapping the probe, without mutating the
// index. Used both for placement (rejecting occupied slots) and speculative
// movement (testing a proposed position before committing).
func (ix *Index) Test(s Shape) []Shape {
	// Stored centers can be up to one cell away from the probe's bounding box
	reach := s.Radius + SpatialCellSize
	minCX, maxCX, minCY, maxCY := cellRange(s.X, s.Y, reach)
	var result []Shape
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			for _, id := range ix.cells[cy*SpatialCols+cx] {
				o := ix.shapes[id]
				if overlaps(s, o) {
					result = append(result, o)
				}
			}
		}
	}
	return result
}

func cellRange(x, y, reach float64) (minCX, maxCX, minCY, maxCY int) {
	minCX = int((x - reach) / SpatialCellSize)
	maxCX = int((x + reach) / SpatialCellSize)
	minCY = int((y - reach) / SpatialCellSize)
	maxCY = int((y + reach) / SpatialCellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= SpatialCols {
		maxCX = SpatialCols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= SpatialRows {
		maxCY = SpatialRows - 1
	}
	return
}

// All returns every distinct pair of currently-overlapping shapes, each pair
// exactly once regardless of insertion order.
func (ix *Index) All() []ShapePair {
	var pairs []ShapePair
	for _, a := range ix.shapes {
		minCX, maxCX, minCY, maxCY := cellRange(a.X, a.Y, SpatialCellSize)
		for cy := minCY; cy <= maxCY; cy++ {
			for cx := minCX; cx <= maxCX; cx++ {
				for _, id := range ix.cells[cy*SpatialCols+cx] {
					if a.ID >= id {
						continue // each unordered pair reported once
					}
					b := ix.shapes[id]
					if overlaps(a, b) {
						pairs = append(pairs, ShapePair{A: a, B: b})
					}
				}
			}
		}
	}
	return pairs
}

// Free samples positions in bounds until one fits a circle of the given
// radius without overlapping any stored shape. Nothing is inserted; the
// caller commits via Update. Reports false if the attempt budget runs out.
func (ix *Index) Free(b Bounds, radius float64) (float64, float64, bool) {
	for i := 0; i < freeAttempts; i++ {
		x := b.MinX + rand.Float64()*(b.MaxX-b.MinX)
		y := b.MinY + rand.Float64()*(b.MaxY-b.MinY)
		if len(ix.Test(Shape{X: x, Y: y, Radius: radius})) == 0 {
			return x, y, true
		}
	}
	return 0, 0, false
}

// Len returns the number of stored shapes
func (ix *Index) Len() int {
	return len(ix.shapes)
}
