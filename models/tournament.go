package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentDeleted   TournamentStatus = "deleted"
)

type Tournament struct {
	ID                 int              `json:"id"`
	Name               string           `json:"name"`
	SportType          SportType        `json:"sport_type"`
	Location           string           `json:"location"`
	StartDate          time.Time        `json:"start_date"`
	EndDate            time.Time        `json:"end_date"`
	MatchDurationMin   int              `json:"match_duration_minutes"`
	MatchIntervalMin   int              `json:"interval_between_matches_minutes"`
	OrganizingSchoolID int              `json:"organizing_school_id"`
	OrganizerID        int              `json:"organizer_id"`
	Status             TournamentStatus `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`

	// Optional related entities, not mapped directly.
	Days     []TournamentDay `json:"days,omitempty"`
	Fixtures []Fixture       `json:"fixtures,omitempty"`
}

// TournamentDay is one usable scheduling window. StartTime and EndTime
// are full timestamps on the given date; together the day windows bound
// the total schedulable time.
type TournamentDay struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	Date         time.Time `json:"date"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// ParticipatingSchool joins a school to a tournament, unique per pair.
type ParticipatingSchool struct {
	ID           int `json:"id"`
	SchoolID     int `json:"school_id"`
	TournamentID int `json:"tournament_id"`
}
