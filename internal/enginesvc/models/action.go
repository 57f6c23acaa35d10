package models

import "time"

type ActionType string

const (
	ActionPlace   ActionType = "PLACE_STARTING_HOUSE"
	ActionBuild   ActionType = "BUILD"
	ActionEndTurn ActionType = "END_TURN"
	ActionAttack  ActionType = "ATTACK"
)

// ActionLogEntry is written once and never updated.
type ActionLogEntry struct {
	ID      int64      `json:"id" bson:"entry_id"`
	MatchID int64      `json:"match_id" bson:"match_id"`
	Seat    int        `json:"seat" bson:"seat"`
	Type    ActionType `json:"type" bson:"type"`
	Message string     `json:"message" bson:"message"`
	Ts      time.Time  `json:"ts" bson:"ts"`
}
