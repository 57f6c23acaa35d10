package engine

import (
	"testing"

	"github.com/avvvet/realm-services/internal/enginesvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBoard(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {4, 4}, {5, 3}, {1, 7}, {10, 10}}

	for _, s := range sizes {
		grid := GenerateBoard(s.w, s.h)
		require.Len(t, grid, s.h)

		counts := map[models.Region]int{}
		for _, row := range grid {
			require.Len(t, row, s.w)
			for _, r := range row {
				counts[r]++
			}
		}

		// every region is used as evenly as the cycle allows
		total := 0
		for _, r := range models.Regions {
			n := counts[r]
			total += n
			assert.GreaterOrEqual(t, n, s.w*s.h/len(models.Regions))
			assert.LessOrEqual(t, n, s.w*s.h/len(models.Regions)+1)
		}
		assert.Equal(t, s.w*s.h, total)
	}
}

func TestGenerateBoardIsDeterministic(t *testing.T) {
	assert.Equal(t, GenerateBoard(6, 4), GenerateBoard(6, 4))
	assert.Equal(t, GenerateBoard(3, 3), GenerateBoard(3, 3))
}

func TestGenerateBoardInvalidSize(t *testing.T) {
	assert.Nil(t, GenerateBoard(0, 3))
	assert.Nil(t, GenerateBoard(3, -1))
}
