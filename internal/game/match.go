package game

// MatchablePair reports whether the tiles at positions i and j may be
// consumed together: both unused, equal or summing to ten, and near.
// The order of i and j does not matter.
func (g *Game) MatchablePair(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	if i == j || i < 0 || j >= len(g.tiles) {
		return false
	}
	a, b := g.tiles[i], g.tiles[j]
	if a.Used() || b.Used() {
		return false
	}
	if a.Value+b.Value != pairSum && a.Value != b.Value {
		return false
	}
	return g.Near(i, j)
}

// Near reports whether i and j are near along the row order or the column.
func (g *Game) Near(i, j int) bool {
	return g.NearHorizontal(i, j) || g.NearVertical(i, j)
}

// NearHorizontal reports whether j is the first unused position after i,
// scanning forward one position at a time (across row ends).
func (g *Game) NearHorizontal(i, j int) bool {
	return g.firstUnusedFrom(i, 1) == j && i < j
}

// NearVertical reports whether j is the first unused position below i in
// the same column.
func (g *Game) NearVertical(i, j int) bool {
	return g.firstUnusedFrom(i, g.width) == j && i < j
}

// firstUnusedFrom returns the first unused position reached from i by
// repeatedly adding step, or -1 if the scan runs off the board.
func (g *Game) firstUnusedFrom(i, step int) int {
	if i < 0 {
		return -1
	}
	for k := i + step; k < len(g.tiles); k += step {
		if !g.tiles[k].Used() {
			return k
		}
	}
	return -1
}

// FindMatchablePair returns the matchable pair with the lowest first
// position (ties broken by the lower second position).
//
// Only the first unused tile to the right and below each tile can be near
// it, so the search is linear in the board length.
func (g *Game) FindMatchablePair() (i, j int, ok bool) {
	for i = range g.tiles {
		if g.tiles[i].Used() {
			continue
		}
		h := g.firstUnusedFrom(i, 1)
		v := g.firstUnusedFrom(i, g.width)
		cands := []int{h, v}
		if v >= 0 && (h < 0 || v < h) {
			cands = []int{v, h}
		}
		for _, j = range cands {
			if j >= 0 && g.MatchablePair(i, j) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// RemovableRows returns every row index for which CanRemoveRow holds.
func (g *Game) RemovableRows() []int {
	var rows []int
	for r := 0; r < g.Rows(); r++ {
		if g.CanRemoveRow(r) {
			rows = append(rows, r)
		}
	}
	return rows
}

// Cleared reports whether every tile on the board is used.
func (g *Game) Cleared() bool {
	return !g.CanAppendGeneration()
}
