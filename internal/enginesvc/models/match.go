package models

import "time"

type MatchStatus string

const (
	MatchPending  MatchStatus = "PENDING"
	MatchRunning  MatchStatus = "RUNNING"
	MatchFinished MatchStatus = "FINISHED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchPending, MatchRunning, MatchFinished:
		return true
	}
	return false
}

type Match struct {
	ID          int64       `json:"id"`           // Primary key
	Status      MatchStatus `json:"status"`       // PENDING -> RUNNING -> FINISHED
	Players     int         `json:"players"`      // Number of seats, seats are 1..Players
	Width       int         `json:"width"`        // Board width
	Height      int         `json:"height"`       // Board height
	CurrentTurn *int        `json:"current_turn"` // Seat to move, set only while RUNNING
	WinnerSeat  *int        `json:"winner_seat"`  // Last seat alive
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at"`
}

// IsTurnOf reports whether the match is running and seat is to move.
func (m *Match) IsTurnOf(seat int) bool {
	return m.CurrentTurn != nil && *m.CurrentTurn == seat
}
