package models

import "time"

// CalendarEvent is a calendar entry for a school. Fixture-derived
// events carry the fixture id and are deleted together with their
// fixture; standalone events (inter-house or otherwise) are managed by
// coaches directly.
type CalendarEvent struct {
	ID           int       `json:"id"`
	SchoolID     int       `json:"school_id"`
	TournamentID *int      `json:"tournament_id,omitempty"`
	FixtureID    *int      `json:"fixture_id,omitempty"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsInterHouse bool      `json:"is_inter_house"`
	CreatedAt    time.Time `json:"created_at"`
}
