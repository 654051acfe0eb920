package models

import "time"

type FixtureStatus string

const (
	FixtureNotStarted FixtureStatus = "not_started"
	FixtureStarted    FixtureStatus = "started"
	FixtureLive       FixtureStatus = "live"
	FixtureCompleted  FixtureStatus = "completed"
)

// Fixture is a single bracket match. Participation2ID may be nil while
// an opponent is still pending. A completed fixture always carries a
// winner; a bye fixture's winner is its slot A participation.
//
// NextFixtureID/NextSlot persist bracket adjacency once the next-round
// fixture exists, so progression does not have to rely on creation
// order alone.
type Fixture struct {
	ID               int           `json:"id"`
	TournamentID     int           `json:"tournament_id"`
	Round            int           `json:"round"`
	Participation1ID *int          `json:"participation1_id,omitempty"`
	Participation2ID *int          `json:"participation2_id,omitempty"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Location         *string       `json:"location,omitempty"`
	IsBye            bool          `json:"is_bye"`
	WinnerID         *int          `json:"winner_id,omitempty"`
	Status           FixtureStatus `json:"status"`
	NextFixtureID    *int          `json:"next_fixture_id,omitempty"`
	NextSlot         *int          `json:"next_slot,omitempty"`
	PlayersTracked   bool          `json:"players_tracked"`
	CreatedAt        time.Time     `json:"created_at"`
}

// HasParticipation reports whether the given participation occupies one
// of the fixture's slots.
func (f *Fixture) HasParticipation(participationID int) bool {
	if f.Participation1ID != nil && *f.Participation1ID == participationID {
		return true
	}
	if f.Participation2ID != nil && *f.Participation2ID == participationID {
		return true
	}
	return false
}
