package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schoolsports/tournament-engine/live"
	"github.com/schoolsports/tournament-engine/metrics"
	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

type EditFixtureInput struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Location  *string    `json:"location,omitempty"`
}

type FixtureService interface {
	Start(ctx context.Context, actor *models.User, fixtureID int) (*models.Fixture, error)
	End(ctx context.Context, actor *models.User, fixtureID, winnerParticipationID int) (*models.Fixture, error)
	SwapTeams(ctx context.Context, actor *models.User, fixtureAID, participationAID, fixtureBID, participationBID int) error
	Edit(ctx context.Context, actor *models.User, fixtureID int, input EditFixtureInput) error
	Delete(ctx context.Context, actor *models.User, fixtureID int) error
}

type fixtureService struct {
	uow               repositories.UnitOfWork
	tournamentRepo    repositories.TournamentRepository
	fixtureRepo       repositories.FixtureRepository
	participationRepo repositories.ParticipationRepository
	resultRepo        repositories.ResultRepository
	eventRepo         repositories.EventRepository
	publisher         live.Publisher
	logger            *slog.Logger
}

func NewFixtureService(
	uow repositories.UnitOfWork,
	tournamentRepo repositories.TournamentRepository,
	fixtureRepo repositories.FixtureRepository,
	participationRepo repositories.ParticipationRepository,
	resultRepo repositories.ResultRepository,
	eventRepo repositories.EventRepository,
	publisher live.Publisher,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		uow:               uow,
		tournamentRepo:    tournamentRepo,
		fixtureRepo:       fixtureRepo,
		participationRepo: participationRepo,
		resultRepo:        resultRepo,
		eventRepo:         eventRepo,
		publisher:         publisher,
		logger:            logger,
	}
}

func (s *fixtureService) Start(ctx context.Context, actor *models.User, fixtureID int) (*models.Fixture, error) {
	var out *models.Fixture
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		f, err := s.loadFixture(ctx, exec, fixtureID)
		if err != nil {
			return err
		}
		if _, err := s.authorizeOrganizer(ctx, exec, f.TournamentID, actor); err != nil {
			return err
		}
		if f.WinnerID != nil {
			return ErrFixtureAlreadyDecided
		}
		if f.Participation1ID == nil || f.Participation2ID == nil {
			return ErrFixtureNotReady
		}
		if f.Status != models.FixtureNotStarted {
			return ErrFixtureAlreadyStarted
		}

		if err := s.fixtureRepo.UpdateStatus(ctx, exec, f.ID, models.FixtureStarted); err != nil {
			return err
		}
		f.Status = models.FixtureStarted
		if err := s.openResult(ctx, exec, f); err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("fixture started", slog.Int("fixture_id", fixtureID))
	return out, nil
}

// End records the winner of a fixture and drives the bracket forward:
// either the tournament is complete, or the winner is advanced into the
// next round. The whole procedure runs in one unit of work so that two
// sibling fixtures completing near-simultaneously cannot both create
// the shared next-round fixture.
func (s *fixtureService) End(ctx context.Context, actor *models.User, fixtureID, winnerParticipationID int) (*models.Fixture, error) {
	var (
		out       *models.Fixture
		completed bool
	)
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		f, err := s.loadFixture(ctx, exec, fixtureID)
		if err != nil {
			return err
		}
		t, err := s.authorizeOrganizer(ctx, exec, f.TournamentID, actor)
		if err != nil {
			return err
		}
		if f.WinnerID != nil {
			return ErrFixtureAlreadyDecided
		}
		if !f.HasParticipation(winnerParticipationID) {
			return ErrTeamNotInFixture
		}

		// A fixture finished by hand is never an automatic bye.
		if err := s.fixtureRepo.UpdateWinner(ctx, exec, f.ID, winnerParticipationID, models.FixtureCompleted, false); err != nil {
			return err
		}
		f.WinnerID = &winnerParticipationID
		f.Status = models.FixtureCompleted
		f.IsBye = false
		out = f

		remaining, err := s.fixtureRepo.CountWithoutWinner(ctx, exec, t.ID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			completed = true
			return s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.TournamentCompleted)
		}
		return s.advanceWinner(ctx, exec, t, f, winnerParticipationID)
	})
	if err != nil {
		return nil, err
	}

	metrics.FixturesCompleted.Inc()
	s.publisher.Publish(live.FixtureTopic(fixtureID), map[string]interface{}{
		"type":       "fixture_completed",
		"fixture_id": fixtureID,
		"winner_id":  winnerParticipationID,
	})
	if completed {
		metrics.TournamentsCompleted.Inc()
		s.logger.Info("tournament completed", slog.Int("tournament_id", out.TournamentID))
	}
	s.logger.Info("fixture ended",
		slog.Int("fixture_id", fixtureID),
		slog.Int("winner_participation_id", winnerParticipationID))
	return out, nil
}

// advanceWinner places the winner of f into the next round. Persisted
// next-fixture links are preferred; pairing same-round fixtures by
// creation order is the fallback for fixtures that have no link yet.
func (s *fixtureService) advanceWinner(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, f *models.Fixture, winnerID int) error {
	if f.NextFixtureID != nil && f.NextSlot != nil {
		return s.fillNextSlot(ctx, exec, *f.NextFixtureID, *f.NextSlot, winnerID)
	}

	round, err := s.fixtureRepo.ListByRound(ctx, exec, t.ID, f.Round)
	if err != nil {
		return err
	}
	idx := -1
	for i, rf := range round {
		if rf.ID == f.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("fixture %d missing from round %d listing", f.ID, f.Round)
	}

	pairStart := idx - idx%2
	if pairStart+1 >= len(round) {
		return s.advanceLoneWinner(ctx, exec, t, f, winnerID)
	}

	sibling := round[pairStart]
	if sibling.ID == f.ID {
		sibling = round[pairStart+1]
	}

	if sibling.NextFixtureID != nil && sibling.NextSlot != nil {
		slot := 1
		if *sibling.NextSlot == 1 {
			slot = 2
		}
		if err := s.fillNextSlot(ctx, exec, *sibling.NextFixtureID, slot, winnerID); err != nil {
			return err
		}
		return s.fixtureRepo.UpdateNextFixture(ctx, exec, f.ID, sibling.NextFixtureID, &slot)
	}

	var slotB *int
	if sibling.WinnerID != nil {
		w := *sibling.WinnerID
		slotB = &w
	}
	status := models.FixtureNotStarted
	if slotB != nil {
		status = models.FixtureStarted
	}
	tracked, err := s.playersTracked(ctx, exec, &winnerID, slotB)
	if err != nil {
		return err
	}

	next := &models.Fixture{
		TournamentID:     t.ID,
		Round:            f.Round + 1,
		Participation1ID: &winnerID,
		Participation2ID: slotB,
		Location:         f.Location,
		Status:           status,
		PlayersTracked:   tracked,
	}
	if err := s.fixtureRepo.Create(ctx, exec, next); err != nil {
		return err
	}
	if status == models.FixtureStarted {
		if err := s.openResult(ctx, exec, next); err != nil {
			return err
		}
	}

	slotA, slotBNum := 1, 2
	if err := s.fixtureRepo.UpdateNextFixture(ctx, exec, f.ID, &next.ID, &slotA); err != nil {
		return err
	}
	return s.fixtureRepo.UpdateNextFixture(ctx, exec, sibling.ID, &next.ID, &slotBNum)
}

// advanceLoneWinner handles a round with an odd fixture count: the
// winner with no sibling either joins an existing half-filled
// next-round fixture whose open slot no other fixture feeds, or
// receives a bye that pre-advances them two rounds out, mirroring the
// policy applied at generation time.
func (s *fixtureService) advanceLoneWinner(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, f *models.Fixture, winnerID int) error {
	nextRound, err := s.fixtureRepo.ListByRound(ctx, exec, t.ID, f.Round+1)
	if err != nil {
		return err
	}
	for _, candidate := range nextRound {
		if candidate.IsBye || candidate.WinnerID != nil {
			continue
		}
		if candidate.Participation1ID == nil || candidate.Participation2ID != nil {
			continue
		}
		// An open slot may already be promised to a pending sibling via
		// its stored forward link; seizing it would let that sibling's
		// winner overwrite this one later.
		reserved, err := s.fixtureRepo.HasFeeder(ctx, exec, candidate.ID, 2)
		if err != nil {
			return err
		}
		if reserved {
			continue
		}
		slot := 2
		if err := s.fillNextSlot(ctx, exec, candidate.ID, slot, winnerID); err != nil {
			return err
		}
		return s.fixtureRepo.UpdateNextFixture(ctx, exec, f.ID, &candidate.ID, &slot)
	}

	winner := winnerID
	bye := &models.Fixture{
		TournamentID:     t.ID,
		Round:            f.Round + 1,
		Participation1ID: &winner,
		StartTime:        f.EndTime,
		EndTime:          f.EndTime,
		Location:         f.Location,
		IsBye:            true,
		WinnerID:         &winner,
		Status:           models.FixtureCompleted,
	}
	if err := s.fixtureRepo.Create(ctx, exec, bye); err != nil {
		return err
	}

	pending := &models.Fixture{
		TournamentID:     t.ID,
		Round:            f.Round + 2,
		Participation1ID: &winner,
		Location:         f.Location,
		Status:           models.FixtureNotStarted,
	}
	if err := s.fixtureRepo.Create(ctx, exec, pending); err != nil {
		return err
	}

	slot := 1
	if err := s.fixtureRepo.UpdateNextFixture(ctx, exec, f.ID, &bye.ID, &slot); err != nil {
		return err
	}
	return s.fixtureRepo.UpdateNextFixture(ctx, exec, bye.ID, &pending.ID, &slot)
}

// fillNextSlot writes the winner into one slot of an existing
// next-round fixture; when that fills the second slot the fixture moves
// straight to started and gets its zeroed result.
func (s *fixtureService) fillNextSlot(ctx context.Context, exec repositories.SQLExecutor, nextFixtureID, slot, winnerID int) error {
	next, err := s.loadFixture(ctx, exec, nextFixtureID)
	if err != nil {
		return err
	}

	winner := winnerID
	if slot == 1 {
		next.Participation1ID = &winner
	} else {
		next.Participation2ID = &winner
	}

	wasStarted := next.Status != models.FixtureNotStarted
	if next.Participation1ID != nil && next.Participation2ID != nil && next.WinnerID == nil {
		next.Status = models.FixtureStarted
	}
	tracked, err := s.playersTracked(ctx, exec, next.Participation1ID, next.Participation2ID)
	if err != nil {
		return err
	}
	next.PlayersTracked = tracked

	if err := s.fixtureRepo.UpdateSlots(ctx, exec, next.ID, next.Participation1ID, next.Participation2ID, next.Status, tracked); err != nil {
		return err
	}
	if next.Status == models.FixtureStarted && !wasStarted {
		return s.openResult(ctx, exec, next)
	}
	return nil
}

func (s *fixtureService) SwapTeams(ctx context.Context, actor *models.User, fixtureAID, participationAID, fixtureBID, participationBID int) error {
	return s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		fa, err := s.loadFixture(ctx, exec, fixtureAID)
		if err != nil {
			return err
		}
		if _, err := s.authorizeOrganizer(ctx, exec, fa.TournamentID, actor); err != nil {
			return err
		}

		if fixtureAID == fixtureBID {
			if fa.WinnerID != nil {
				return ErrFixtureAlreadyDecided
			}
			if !fa.HasParticipation(participationAID) || !fa.HasParticipation(participationBID) {
				return ErrTeamNotInFixture
			}
			fa.Participation1ID, fa.Participation2ID = fa.Participation2ID, fa.Participation1ID
			return s.fixtureRepo.UpdateSlots(ctx, exec, fa.ID, fa.Participation1ID, fa.Participation2ID, fa.Status, fa.PlayersTracked)
		}

		fb, err := s.loadFixture(ctx, exec, fixtureBID)
		if err != nil {
			return err
		}
		if fb.TournamentID != fa.TournamentID {
			return ErrCrossTournamentSwap
		}
		if fa.WinnerID != nil || fb.WinnerID != nil {
			return ErrFixtureAlreadyDecided
		}
		if !fa.HasParticipation(participationAID) || !fb.HasParticipation(participationBID) {
			return ErrTeamNotInFixture
		}

		replaceSlot(fa, participationAID, participationBID)
		replaceSlot(fb, participationBID, participationAID)

		trackedA, err := s.playersTracked(ctx, exec, fa.Participation1ID, fa.Participation2ID)
		if err != nil {
			return err
		}
		if err := s.fixtureRepo.UpdateSlots(ctx, exec, fa.ID, fa.Participation1ID, fa.Participation2ID, fa.Status, trackedA); err != nil {
			return err
		}
		trackedB, err := s.playersTracked(ctx, exec, fb.Participation1ID, fb.Participation2ID)
		if err != nil {
			return err
		}
		return s.fixtureRepo.UpdateSlots(ctx, exec, fb.ID, fb.Participation1ID, fb.Participation2ID, fb.Status, trackedB)
	})
}

func replaceSlot(f *models.Fixture, from, to int) {
	if f.Participation1ID != nil && *f.Participation1ID == from {
		v := to
		f.Participation1ID = &v
		return
	}
	if f.Participation2ID != nil && *f.Participation2ID == from {
		v := to
		f.Participation2ID = &v
	}
}

func (s *fixtureService) Edit(ctx context.Context, actor *models.User, fixtureID int, input EditFixtureInput) error {
	return s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		f, err := s.loadFixture(ctx, exec, fixtureID)
		if err != nil {
			return err
		}
		if _, err := s.authorizeOrganizer(ctx, exec, f.TournamentID, actor); err != nil {
			return err
		}
		if f.WinnerID != nil {
			return ErrFixtureAlreadyDecided
		}

		var start, end sql.NullTime
		if input.StartTime != nil {
			start = sql.NullTime{Time: *input.StartTime, Valid: true}
			f.StartTime = *input.StartTime
		}
		if input.EndTime != nil {
			end = sql.NullTime{Time: *input.EndTime, Valid: true}
			f.EndTime = *input.EndTime
		}
		if err := s.fixtureRepo.UpdateSchedule(ctx, exec, f.ID, start, end, input.Location); err != nil {
			return err
		}
		return s.eventRepo.UpdateScheduleByFixture(ctx, exec, f.ID, f.StartTime, f.EndTime)
	})
}

func (s *fixtureService) Delete(ctx context.Context, actor *models.User, fixtureID int) error {
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		f, err := s.loadFixture(ctx, exec, fixtureID)
		if err != nil {
			return err
		}
		if _, err := s.authorizeOrganizer(ctx, exec, f.TournamentID, actor); err != nil {
			return err
		}
		if err := s.eventRepo.DeleteByFixture(ctx, exec, f.ID); err != nil {
			return err
		}
		return s.fixtureRepo.Delete(ctx, exec, f.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("fixture deleted", slog.Int("fixture_id", fixtureID))
	return nil
}

// openResult creates the zeroed MatchResult for a fixture entering
// started state. Slot A is home, slot B is away.
func (s *fixtureService) openResult(ctx context.Context, exec repositories.SQLExecutor, f *models.Fixture) error {
	result := &models.MatchResult{
		FixtureID:           f.ID,
		HomeParticipationID: *f.Participation1ID,
		AwayParticipationID: *f.Participation2ID,
		HomeScore:           "0",
		AwayScore:           "0",
		FinalScore:          "0-0",
	}
	return s.resultRepo.Create(ctx, exec, result)
}

// playersTracked reports whether per-player score log entries should be
// written for a fixture: both slots filled and both participations
// backed by real rosters.
func (s *fixtureService) playersTracked(ctx context.Context, exec repositories.SQLExecutor, p1, p2 *int) (bool, error) {
	if p1 == nil || p2 == nil {
		return false, nil
	}
	for _, id := range []int{*p1, *p2} {
		p, err := s.participationRepo.GetByID(ctx, exec, id)
		if err != nil {
			return false, err
		}
		if p.Kind != models.ParticipationReal {
			return false, nil
		}
	}
	return true, nil
}

func (s *fixtureService) loadFixture(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Fixture, error) {
	f, err := s.fixtureRepo.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return f, nil
}

// authorizeOrganizer loads the fixture's tournament and rejects actors
// other than its organizer. Soft-deleted tournaments read as absent.
func (s *fixtureService) authorizeOrganizer(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, actor *models.User) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status == models.TournamentDeleted {
		return nil, ErrTournamentNotFound
	}
	if t.OrganizerID != actor.ID {
		return nil, ErrNotOrganizer
	}
	return t, nil
}
