package world

import "slices"

// Index tracks which occupants stand on which hex so that "who is within
// earshot" is a walk over nearby cells instead of the whole population.
// Not safe for concurrent mutation.
type Index struct {
	positions map[uint64]HexCoord
	cells     map[HexCoord][]uint64 // sorted ascending
}

// NewIndex creates an empty spatial index.
func NewIndex() *Index {
	return &Index{
		positions: make(map[uint64]HexCoord),
		cells:     make(map[HexCoord][]uint64),
	}
}

// Place puts id at coord, moving it if it was already indexed elsewhere.
func (ix *Index) Place(id uint64, coord HexCoord) {
	if old, ok := ix.positions[id]; ok {
		if old == coord {
			return
		}
		ix.removeFromCell(id, old)
	}
	ix.positions[id] = coord
	cell := ix.cells[coord]
	i, _ := slices.BinarySearch(cell, id)
	ix.cells[coord] = slices.Insert(cell, i, id)
}

// Position returns where id is indexed.
func (ix *Index) Position(id uint64) (HexCoord, bool) {
	c, ok := ix.positions[id]
	return c, ok
}

// Len returns the number of indexed occupants.
func (ix *Index) Len() int {
	return len(ix.positions)
}

// ForEachWithin calls visit for every occupant at most radius steps from
// center, ordered by hex then ID. Returning false from visit stops the walk.
func (ix *Index) ForEachWithin(center HexCoord, radius int, visit func(id uint64, dist int) bool) {
	for _, c := range center.Within(radius) {
		cell := ix.cells[c]
		if len(cell) == 0 {
			continue
		}
		d := Distance(center, c)
		for _, id := range cell {
			if !visit(id, d) {
				return
			}
		}
	}
}

func (ix *Index) removeFromCell(id uint64, coord HexCoord) {
	cell := ix.cells[coord]
	i, found := slices.BinarySearch(cell, id)
	if !found {
		return
	}
	cell = slices.Delete(cell, i, i+1)
	if len(cell) == 0 {
		delete(ix.cells, coord)
		return
	}
	ix.cells[coord] = cell
}
