package models

import "time"

// MatchResult is the running score of a non-bye fixture, created when
// the fixture starts and mutated by score events. Scores are kept as
// string-encoded integers with a composed "H-A" final score.
type MatchResult struct {
	ID                  int       `json:"id"`
	FixtureID           int       `json:"fixture_id"`
	HomeParticipationID int       `json:"home_participation_id"`
	AwayParticipationID int       `json:"away_participation_id"`
	HomeScore           string    `json:"home_score"`
	AwayScore           string    `json:"away_score"`
	FinalScore          string    `json:"final_score"`
	Confirmed           bool      `json:"confirmed"`
	CreatedAt           time.Time `json:"created_at"`
}
