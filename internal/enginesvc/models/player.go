package models

type Player struct {
	MatchID   int64 `json:"match_id"`
	Seat      int   `json:"seat"` // 1..N within a match
	Bot       bool  `json:"bot"`
	Alive     bool  `json:"alive"`
	Lightning int   `json:"lightning"`
	Wood      int   `json:"wood"`
	Stone     int   `json:"stone"`
	Glass     int   `json:"glass"`
	Force     int   `json:"force"`
}

// Amount returns the stock the player holds of r.
func (p *Player) Amount(r Resource) int {
	switch r {
	case Wood:
		return p.Wood
	case Stone:
		return p.Stone
	case Glass:
		return p.Glass
	case Force:
		return p.Force
	}
	return 0
}

// Add credits n units of r (n may be negative).
func (p *Player) Add(r Resource, n int) {
	switch r {
	case Wood:
		p.Wood += n
	case Stone:
		p.Stone += n
	case Glass:
		p.Glass += n
	case Force:
		p.Force += n
	}
}

func (p *Player) CanAfford(c Cost) bool {
	return p.Wood >= c.Wood && p.Stone >= c.Stone && p.Glass >= c.Glass && p.Force >= c.Force
}

func (p *Player) Pay(c Cost) {
	p.Wood -= c.Wood
	p.Stone -= c.Stone
	p.Glass -= c.Glass
	p.Force -= c.Force
}
