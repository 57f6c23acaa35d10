package models

import "strings"

type Region string

const (
	Sky       Region = "SKY"
	Forest    Region = "FOREST"
	Waters    Region = "WATERS"
	Villages  Region = "VILLAGES"
	Mountains Region = "MOUNTAINS"
)

// Regions is the fixed order used to fill a new board.
var Regions = []Region{Sky, Forest, Waters, Villages, Mountains}

type Resource string

const (
	Wood  Resource = "WOOD"
	Stone Resource = "STONE"
	Glass Resource = "GLASS"
	Force Resource = "FORCE"
)

var Resources = []Resource{Wood, Stone, Glass, Force}

// ParseResource accepts a resource name in any case.
func ParseResource(s string) (Resource, bool) {
	r := Resource(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range Resources {
		if v == r {
			return r, true
		}
	}
	return "", false
}

type Cost struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Glass int `json:"glass"`
	Force int `json:"force"`
}

var BuildCost = map[Region]Cost{
	Sky:       {Wood: 1, Stone: 1, Glass: 0, Force: 2},
	Forest:    {Wood: 2, Stone: 2, Glass: 0, Force: 0},
	Waters:    {Wood: 1, Stone: 1, Glass: 2, Force: 1},
	Villages:  {Wood: 2, Stone: 2, Glass: 1, Force: 0},
	Mountains: {Wood: 0, Stone: 3, Glass: 0, Force: 2},
}

// Yield lists what a region can produce; one entry is picked per cell per tick.
var Yield = map[Region][]Resource{
	Sky:       {Force},
	Forest:    {Wood},
	Waters:    {Glass},
	Villages:  {Wood, Stone},
	Mountains: {Stone},
}

const (
	StartingStock     = 2
	StartingLightning = 2
	RazeHits          = 3
	BonusThreshold    = 2 // cells of one region a seat must own for the double yield
	DefaultTradeTTLMs = 20000
	BoardSeed         = 42
)
