package models

import "time"

type SportType string

const (
	SportFootball SportType = "FOOTBALL"
)

// PlayerLimits bounds roster sizes per sport, checked when a roster
// snapshot is taken.
var PlayerLimits = map[SportType]struct{ Min, Max int }{
	SportFootball: {Min: 5, Max: 20},
}

type Team struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	SportType     SportType `json:"sport_type"`
	SchoolID      int       `json:"school_id"`
	CoachID       *int      `json:"coach_id,omitempty"`
	IsPlaceholder bool      `json:"is_placeholder"`
	CreatedAt     time.Time `json:"created_at"`
}

// TeamVersion is an immutable roster snapshot. Fixtures reference a
// participation pinned to a version, so mid-tournament roster edits
// never change who played.
type TeamVersion struct {
	ID        int       `json:"id"`
	TeamID    int       `json:"team_id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}
