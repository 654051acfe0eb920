package models

import "time"

type ScoreEventType string

const (
	EventGoal       ScoreEventType = "Goal"
	EventYellowCard ScoreEventType = "YellowCard"
	EventRedCard    ScoreEventType = "RedCard"
)

// ValidScoreEventType reports whether t is a known in-match event type.
func ValidScoreEventType(t ScoreEventType) bool {
	switch t {
	case EventGoal, EventYellowCard, EventRedCard:
		return true
	}
	return false
}

// ScoreLogEntry is one discrete in-match event. Entries are append-only
// and form the authoritative event history of a fixture.
type ScoreLogEntry struct {
	ID              int            `json:"id"`
	FixtureID       int            `json:"fixture_id"`
	EventType       ScoreEventType `json:"event_type"`
	ParticipationID int            `json:"participation_id"`
	PlayerID        *int           `json:"player_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
