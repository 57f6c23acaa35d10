package models

// Unowned marks a cell without a house.
const Unowned = -1

type BoardCell struct {
	MatchID int64  `json:"match_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Region  Region `json:"region"`
	Owner   int    `json:"owner"` // seat, or -1
	Hits    int    `json:"hits"`  // attack hits since the house was built
}

func (c *BoardCell) Owned() bool {
	return c.Owner != Unowned
}

// SetOwner changes ownership and clears the hit counter.
func (c *BoardCell) SetOwner(seat int) {
	c.Owner = seat
	c.Hits = 0
}
