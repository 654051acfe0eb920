package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolsports/tournament-engine/brackets"
	"github.com/schoolsports/tournament-engine/metrics"
	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

type TournamentDayInput struct {
	Date      time.Time `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type CreateTournamentInput struct {
	Name                 string               `json:"name"`
	SportType            models.SportType     `json:"sport_type"`
	Location             string               `json:"location"`
	StartDate            time.Time            `json:"start_date"`
	EndDate              time.Time            `json:"end_date"`
	Days                 []TournamentDayInput `json:"days"`
	MatchDurationMin     int                  `json:"match_duration_minutes"`
	MatchIntervalMin     int                  `json:"interval_between_matches_minutes"`
	ParticipatingSchools []int                `json:"participating_schools"`
}

// RestructureInput carries the schedule-affecting edits. Nil slices and
// pointers keep the stored values.
type RestructureInput struct {
	Name                 *string              `json:"name,omitempty"`
	Location             *string              `json:"location,omitempty"`
	StartDate            *time.Time           `json:"start_date,omitempty"`
	EndDate              *time.Time           `json:"end_date,omitempty"`
	Days                 []TournamentDayInput `json:"days,omitempty"`
	MatchDurationMin     *int                 `json:"match_duration_minutes,omitempty"`
	MatchIntervalMin     *int                 `json:"interval_between_matches_minutes,omitempty"`
	ParticipatingSchools []int                `json:"participating_schools,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, actor *models.User, input CreateTournamentInput) (*models.Tournament, error)
	Restructure(ctx context.Context, actor *models.User, tournamentID int, input RestructureInput) (*models.Tournament, error)
	Delete(ctx context.Context, actor *models.User, tournamentID int) error
	GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error)
	ListBySchool(ctx context.Context, schoolID int) ([]*models.Tournament, error)
}

type tournamentService struct {
	uow               repositories.UnitOfWork
	tournamentRepo    repositories.TournamentRepository
	schoolRepo        repositories.SchoolRepository
	teamRepo          repositories.TeamRepository
	participationRepo repositories.ParticipationRepository
	fixtureRepo       repositories.FixtureRepository
	resultRepo        repositories.ResultRepository
	eventRepo         repositories.EventRepository
	generator         *brackets.Generator
	logger            *slog.Logger
}

func NewTournamentService(
	uow repositories.UnitOfWork,
	tournamentRepo repositories.TournamentRepository,
	schoolRepo repositories.SchoolRepository,
	teamRepo repositories.TeamRepository,
	participationRepo repositories.ParticipationRepository,
	fixtureRepo repositories.FixtureRepository,
	resultRepo repositories.ResultRepository,
	eventRepo repositories.EventRepository,
	generator *brackets.Generator,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		uow:               uow,
		tournamentRepo:    tournamentRepo,
		schoolRepo:        schoolRepo,
		teamRepo:          teamRepo,
		participationRepo: participationRepo,
		fixtureRepo:       fixtureRepo,
		resultRepo:        resultRepo,
		eventRepo:         eventRepo,
		generator:         generator,
		logger:            logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, actor *models.User, input CreateTournamentInput) (*models.Tournament, error) {
	if actor.Role != models.RoleCoach {
		return nil, ErrCoachOnly
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if len(input.Days) == 0 {
		return nil, ErrNoTournamentDays
	}
	if len(input.ParticipatingSchools) < 2 {
		return nil, ErrNotEnoughSchools
	}
	if input.MatchDurationMin <= 0 || input.MatchIntervalMin < 0 {
		return nil, ErrInvalidMatchTiming
	}

	sport := input.SportType
	if sport == "" {
		sport = models.SportFootball
	}

	t := &models.Tournament{
		Name:               input.Name,
		SportType:          sport,
		Location:           input.Location,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		MatchDurationMin:   input.MatchDurationMin,
		MatchIntervalMin:   input.MatchIntervalMin,
		OrganizingSchoolID: actor.SchoolID,
		OrganizerID:        actor.ID,
		Status:             models.TournamentActive,
	}

	// The whole generation is one unit of work: a partially generated
	// bracket is an invalid bracket.
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, t); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		for _, d := range input.Days {
			day := models.TournamentDay{
				TournamentID: t.ID,
				Date:         d.Date,
				StartTime:    d.StartTime,
				EndTime:      d.EndTime,
			}
			if err := s.tournamentRepo.CreateDay(ctx, exec, &day); err != nil {
				return fmt.Errorf("failed to create tournament day: %w", err)
			}
			t.Days = append(t.Days, day)
		}
		for _, schoolID := range input.ParticipatingSchools {
			if err := s.tournamentRepo.AddParticipatingSchool(ctx, exec, t.ID, schoolID); err != nil {
				return fmt.Errorf("failed to add participating school %d: %w", schoolID, err)
			}
		}
		return s.generateRoundOne(ctx, exec, t, input.ParticipatingSchools)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID),
		slog.Int("organizer_id", actor.ID),
		slog.Int("schools", len(input.ParticipatingSchools)))
	return t, nil
}

// generateRoundOne resolves the team pool, lays out round one across
// the day windows and persists fixtures with their calendar events.
// Must run inside the caller's unit of work.
func (s *tournamentService) generateRoundOne(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, schoolIDs []int) error {
	pool, err := s.resolveTeamPool(ctx, exec, t, schoolIDs)
	if err != nil {
		return err
	}

	entryIDs := make([]int, len(pool))
	byID := make(map[int]*models.TeamParticipation, len(pool))
	for i, p := range pool {
		entryIDs[i] = p.ID
		byID[p.ID] = p
	}

	windows := make([]brackets.DayWindow, len(t.Days))
	for i, day := range t.Days {
		windows[i] = brackets.DayWindow{Start: day.StartTime, End: day.EndTime}
	}

	duration := time.Duration(t.MatchDurationMin) * time.Minute
	interval := time.Duration(t.MatchIntervalMin) * time.Minute
	plan, err := s.generator.PlanRoundOne(entryIDs, windows, duration, interval)
	if err != nil {
		if errors.Is(err, brackets.ErrScheduleOverflow) {
			return fmt.Errorf("%w: %v", ErrScheduleOverflow, err)
		}
		return err
	}

	created := 0
	for _, planned := range plan.Fixtures {
		p1 := byID[planned.Participation1ID]
		p2 := byID[planned.Participation2ID]
		p1ID, p2ID := p1.ID, p2.ID

		fixture := &models.Fixture{
			TournamentID:     t.ID,
			Round:            1,
			Participation1ID: &p1ID,
			Participation2ID: &p2ID,
			StartTime:        planned.StartTime,
			EndTime:          planned.EndTime,
			Location:         &t.Location,
			Status:           models.FixtureNotStarted,
			PlayersTracked:   p1.Kind == models.ParticipationReal && p2.Kind == models.ParticipationReal,
		}
		if err := s.fixtureRepo.Create(ctx, exec, fixture); err != nil {
			return fmt.Errorf("failed to create fixture: %w", err)
		}
		created++

		event := &models.CalendarEvent{
			SchoolID:     t.OrganizingSchoolID,
			TournamentID: &fixture.TournamentID,
			FixtureID:    &fixture.ID,
			Title:        fmt.Sprintf("%s vs %s", teamName(p1), teamName(p2)),
			StartDate:    planned.StartTime,
			EndDate:      planned.EndTime,
		}
		if err := s.eventRepo.Create(ctx, exec, event); err != nil {
			return fmt.Errorf("failed to create calendar event: %w", err)
		}
	}

	if plan.ByeParticipationID != nil {
		if err := s.createByeFixture(ctx, exec, t, *plan.ByeParticipationID, 2); err != nil {
			return err
		}
		created++
	}

	metrics.FixturesGenerated.Add(float64(created))
	return nil
}

// createByeFixture records an automatic win for the given participation
// at the given round: a completed fixture against a synthetic
// bye-opponent entry.
func (s *tournamentService) createByeFixture(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, byeParticipationID, round int) error {
	byeTeam := &models.Team{
		Name:      "BYE",
		SportType: t.SportType,
		SchoolID:  t.OrganizingSchoolID,
	}
	if err := s.teamRepo.CreatePlaceholder(ctx, exec, byeTeam); err != nil {
		return fmt.Errorf("failed to create bye opponent team: %w", err)
	}
	opponent := &models.TeamParticipation{
		TournamentID: t.ID,
		TeamID:       byeTeam.ID,
		Kind:         models.ParticipationByeOpponent,
	}
	if err := s.participationRepo.Create(ctx, exec, opponent); err != nil {
		return err
	}

	winnerID := byeParticipationID
	fixture := &models.Fixture{
		TournamentID:     t.ID,
		Round:            round,
		Participation1ID: &winnerID,
		Participation2ID: &opponent.ID,
		StartTime:        t.StartDate,
		EndTime:          t.StartDate,
		Location:         &t.Location,
		IsBye:            true,
		WinnerID:         &winnerID,
		Status:           models.FixtureCompleted,
		PlayersTracked:   false,
	}
	if err := s.fixtureRepo.Create(ctx, exec, fixture); err != nil {
		return fmt.Errorf("failed to create bye fixture: %w", err)
	}
	return nil
}

func (s *tournamentService) Restructure(ctx context.Context, actor *models.User, tournamentID int, input RestructureInput) (*models.Tournament, error) {
	var result *models.Tournament

	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.loadActiveTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != actor.ID {
			return ErrNotOrganizer
		}
		if time.Now().After(t.StartDate) {
			return ErrTournamentAlreadyStarted
		}

		if input.Name != nil {
			t.Name = *input.Name
		}
		if input.Location != nil {
			t.Location = *input.Location
		}
		if input.StartDate != nil {
			t.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			t.EndDate = *input.EndDate
		}
		if input.MatchDurationMin != nil {
			t.MatchDurationMin = *input.MatchDurationMin
		}
		if input.MatchIntervalMin != nil {
			t.MatchIntervalMin = *input.MatchIntervalMin
		}
		if !t.EndDate.After(t.StartDate) {
			return ErrInvalidDateRange
		}
		if t.MatchDurationMin <= 0 || t.MatchIntervalMin < 0 {
			return ErrInvalidMatchTiming
		}
		if err := s.tournamentRepo.Update(ctx, exec, t); err != nil {
			return err
		}

		// The old bracket is removed wholesale before regenerating.
		if err := s.eventRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.resultRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.fixtureRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.participationRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}

		if input.Days != nil {
			if err := s.tournamentRepo.DeleteDays(ctx, exec, t.ID); err != nil {
				return err
			}
			t.Days = nil
			for _, d := range input.Days {
				day := models.TournamentDay{
					TournamentID: t.ID,
					Date:         d.Date,
					StartTime:    d.StartTime,
					EndTime:      d.EndTime,
				}
				if err := s.tournamentRepo.CreateDay(ctx, exec, &day); err != nil {
					return err
				}
				t.Days = append(t.Days, day)
			}
		} else {
			days, err := s.tournamentRepo.ListDays(ctx, exec, t.ID)
			if err != nil {
				return err
			}
			t.Days = days
		}
		if len(t.Days) == 0 {
			return ErrNoTournamentDays
		}

		schoolIDs := input.ParticipatingSchools
		if schoolIDs == nil {
			schoolIDs, err = s.tournamentRepo.ListParticipatingSchools(ctx, exec, t.ID)
			if err != nil {
				return err
			}
		} else {
			if len(schoolIDs) < 2 {
				return ErrNotEnoughSchools
			}
			if err := s.tournamentRepo.DeleteParticipatingSchools(ctx, exec, t.ID); err != nil {
				return err
			}
			for _, schoolID := range schoolIDs {
				if err := s.tournamentRepo.AddParticipatingSchool(ctx, exec, t.ID, schoolID); err != nil {
					return err
				}
			}
		}

		if err := s.generateRoundOne(ctx, exec, t, schoolIDs); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament restructured", slog.Int("tournament_id", tournamentID))
	return result, nil
}

func (s *tournamentService) Delete(ctx context.Context, actor *models.User, tournamentID int) error {
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.loadActiveTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.OrganizerID != actor.ID {
			return ErrNotOrganizer
		}

		if err := s.eventRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.resultRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.fixtureRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.TournamentDeleted)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament deleted", slog.Int("tournament_id", tournamentID))
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	var t *models.Tournament
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		loaded, err := s.loadActiveTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		days, err := s.tournamentRepo.ListDays(ctx, exec, loaded.ID)
		if err != nil {
			return err
		}
		loaded.Days = days
		t = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) ListBySchool(ctx context.Context, schoolID int) ([]*models.Tournament, error) {
	var tournaments []*models.Tournament
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		tournaments, listErr = s.tournamentRepo.ListBySchool(ctx, exec, schoolID)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return tournaments, nil
}

// loadActiveTournament fetches a tournament, treating a soft-deleted
// one as absent.
func (s *tournamentService) loadActiveTournament(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status == models.TournamentDeleted {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

func teamName(p *models.TeamParticipation) string {
	if p.Team != nil && p.Team.Name != "" {
		return p.Team.Name
	}
	return fmt.Sprintf("Participation %d", p.ID)
}
