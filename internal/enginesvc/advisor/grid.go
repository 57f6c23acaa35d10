package advisor

import (
	"github.com/avvvet/realm-services/internal/enginesvc/engine"
	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

// grid indexes board cells by position.
type grid struct {
	cells []*models.BoardCell
	at    map[[2]int]*models.BoardCell
	owned map[int]int
}

func newGrid(b engine.Board) *grid {
	g := &grid{
		cells: b.Cells,
		at:    make(map[[2]int]*models.BoardCell, len(b.Cells)),
		owned: make(map[int]int),
	}
	for _, c := range b.Cells {
		g.at[[2]int{c.X, c.Y}] = c
		if c.Owned() {
			g.owned[c.Owner]++
		}
	}
	return g
}

func (g *grid) count(seat int) int {
	return g.owned[seat]
}

func (g *grid) neighbours(c *models.BoardCell) []*models.BoardCell {
	var out []*models.BoardCell
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if n, ok := g.at[[2]int{c.X + d[0], c.Y + d[1]}]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (g *grid) adjacentOwned(c *models.BoardCell, seat int) int {
	n := 0
	for _, nb := range g.neighbours(c) {
		if nb.Owner == seat {
			n++
		}
	}
	return n
}

func (g *grid) adjacentRivals(c *models.BoardCell, seat int) int {
	n := 0
	for _, nb := range g.neighbours(c) {
		if nb.Owned() && nb.Owner != seat {
			n++
		}
	}
	return n
}
