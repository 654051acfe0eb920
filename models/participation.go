package models

import "time"

// ParticipationKind tags the variant of a bracket entry: a real team
// pinned to a roster version, a synthesized placeholder for a school
// without a team, or the opposite side of a bye fixture.
type ParticipationKind string

const (
	ParticipationReal        ParticipationKind = "real"
	ParticipationPlaceholder ParticipationKind = "placeholder"
	ParticipationByeOpponent ParticipationKind = "bye_opponent"
)

// TeamParticipation is one team's presence in one tournament. Fixtures
// reference participations, never raw team ids.
type TeamParticipation struct {
	ID            int               `json:"id"`
	TournamentID  int               `json:"tournament_id"`
	TeamID        int               `json:"team_id"`
	TeamVersionID *int              `json:"team_version_id,omitempty"`
	Kind          ParticipationKind `json:"kind"`
	CreatedAt     time.Time         `json:"created_at"`

	Team *Team `json:"team,omitempty"`
}
