// Package spatial implements the frame-coherent proximity index the engine
// queries once per tick for each entity's near neighborhood. Cells are
// fixed-size buckets addressed by a packed integer hash; entities track
// which cell they currently occupy so that an Update call that stays in
// the same cell and moves less than half a cell is a cheap no-op.
package spatial

import "math"

// Point is anything the grid can index: an id plus a position.
type Point interface {
	PointID() string
	PointXY() (x, y float64)
}

// Grid is a uniform hashed spatial index over cell size C.
type Grid struct {
	cellSize float64
	cells    map[int64][]string
	points   map[string]pointState

	TotalInserts   int
	SkippedInserts int
	Rebuilds       int
}

type pointState struct {
	cell int64
	x, y float64
}

// New returns a Grid with the given cell size. Callers pass the proximity
// radius in use (spec.md §4.2); a non-positive size falls back to 1.
func New(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[int64][]string),
		points:   make(map[string]pointState),
	}
}

func (g *Grid) cellOf(x, y float64) (int64, int64) {
	return int64(math.Floor(x / g.cellSize)), int64(math.Floor(y / g.cellSize))
}

// cellHash packs two cell coordinates into one key with a sign offset so
// negative coordinates do not collide with positive ones.
func cellHash(cx, cy int64) int64 {
	const offset = 1 << 20
	return (cx + offset) * (1 << 42) + (cy + offset)
}

// Insert adds a new point to the grid, appending it to its cell's bucket.
func (g *Grid) Insert(id string, x, y float64) {
	cx, cy := g.cellOf(x, y)
	h := cellHash(cx, cy)
	g.cells[h] = append(g.cells[h], id)
	g.points[id] = pointState{cell: h, x: x, y: y}
	g.TotalInserts++
}

// Update repositions an already-inserted point. If the point has not
// crossed a cell boundary and its displacement squared is under
// (cellSize/2)^2, the bucket membership is left untouched (frame
// coherence) — only the cached coordinate is refreshed.
func (g *Grid) Update(id string, newX, newY float64) {
	st, ok := g.points[id]
	if !ok {
		g.Insert(id, newX, newY)
		return
	}
	cx, cy := g.cellOf(newX, newY)
	newCell := cellHash(cx, cy)

	if newCell == st.cell {
		dx, dy := newX-st.x, newY-st.y
		half := g.cellSize / 2
		if dx*dx+dy*dy < half*half {
			g.points[id] = pointState{cell: st.cell, x: newX, y: newY}
			g.SkippedInserts++
			return
		}
	}

	g.removeFromCell(st.cell, id)
	g.cells[newCell] = append(g.cells[newCell], id)
	g.points[id] = pointState{cell: newCell, x: newX, y: newY}
	g.Rebuilds++
}

// Remove deletes a point from the grid entirely.
func (g *Grid) Remove(id string) {
	st, ok := g.points[id]
	if !ok {
		return
	}
	g.removeFromCell(st.cell, id)
	delete(g.points, id)
}

func (g *Grid) removeFromCell(cell int64, id string) {
	bucket := g.cells[cell]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			g.cells[cell] = bucket[:len(bucket)-1]
			break
		}
	}
	if len(g.cells[cell]) == 0 {
		delete(g.cells, cell)
	}
}

// Query returns every point id within radius r of (x,y), excluding
// exclude (pass "" for no exclusion). It scans the bounding box of cells
// covering the query circle and filters by squared distance.
func (g *Grid) Query(x, y, r float64, exclude string) []string {
	var out []string
	minCX, minCY := g.cellOf(x-r, y-r)
	maxCX, maxCY := g.cellOf(x+r, y+r)
	r2 := r * r

	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			bucket := g.cells[cellHash(cx, cy)]
			for _, id := range bucket {
				if id == exclude {
					continue
				}
				st := g.points[id]
				dx, dy := st.x-x, st.y-y
				if dx*dx+dy*dy <= r2 {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// CellOf returns the packed cell hash a point currently occupies, and
// whether the point is known to the grid. Exposed for invariant checks
// (spec.md §8 invariant 2: grid.query(e.x,e.y,0) must contain e).
func (g *Grid) CellOf(id string) (int64, bool) {
	st, ok := g.points[id]
	return st.cell, ok
}

// Len returns the number of distinct points currently indexed.
func (g *Grid) Len() int {
	return len(g.points)
}
