package services

import "errors"

// Typed errors surfaced to the API layer. None are retried
// automatically; handlers map them onto HTTP statuses.
var (
	// Not found
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrFixtureNotFound     = errors.New("fixture not found")
	ErrSchoolNotFound      = errors.New("school not found")
	ErrEventNotFound       = errors.New("calendar event not found")
	ErrMatchResultNotFound = errors.New("match result not found")

	// Authorization
	ErrNotOrganizer  = errors.New("only the organizing coach can perform this action")
	ErrCoachOnly     = errors.New("only a coach can perform this action")
	ErrModeratorOnly = errors.New("only a moderator can log match events")

	// Validation
	ErrInvalidDateRange   = errors.New("tournament end date must be after start date")
	ErrNoTournamentDays   = errors.New("at least one tournament day is required")
	ErrNotEnoughSchools   = errors.New("at least two participating schools are required")
	ErrScheduleOverflow   = errors.New("matches do not fit into the configured tournament days")
	ErrInvalidMatchTiming = errors.New("match duration must be positive and interval non-negative")
	ErrInvalidEventType   = errors.New("unknown match event type")
	ErrSchoolNameInUse    = errors.New("school name or domain already in use")
	ErrPasskeyRequired    = errors.New("school passkey is required")

	// State conflicts
	ErrTournamentAlreadyStarted = errors.New("tournament has already started")
	ErrFixtureNotReady          = errors.New("fixture does not have both participants assigned")
	ErrFixtureAlreadyStarted    = errors.New("fixture has already been started")
	ErrFixtureAlreadyDecided    = errors.New("fixture already has a winner")
	ErrCrossTournamentSwap      = errors.New("fixtures belong to different tournaments")
	ErrEventNotEditable         = errors.New("fixture-derived events are managed through their fixture")

	// Integrity
	ErrSchoolNotEligible    = errors.New("participating school could not be resolved")
	ErrRosterVersionMissing = errors.New("team has no roster version")
	ErrTeamNotInFixture     = errors.New("team is not part of this fixture")
)
