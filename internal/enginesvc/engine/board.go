package engine

import (
	"math/rand"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
)

// GenerateBoard lays out width*height regions, indexed [y][x]. The regions
// are cycled in their fixed order and shuffled with a constant seed, so the
// same size always yields the same board.
func GenerateBoard(width, height int) [][]models.Region {
	if width < 1 || height < 1 {
		return nil
	}

	total := width * height
	all := make([]models.Region, total)
	for i := range all {
		all[i] = models.Regions[i%len(models.Regions)]
	}

	rnd := rand.New(rand.NewSource(models.BoardSeed))
	rnd.Shuffle(total, func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	grid := make([][]models.Region, height)
	idx := 0
	for y := 0; y < height; y++ {
		grid[y] = make([]models.Region, width)
		for x := 0; x < width; x++ {
			grid[y][x] = all[idx]
			idx++
		}
	}
	return grid
}
