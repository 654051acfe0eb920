package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/schoolsports/tournament-engine/brackets"
	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

type BracketService interface {
	RenderBracket(ctx context.Context, tournamentID int) ([]brackets.BracketNode, error)
}

type bracketService struct {
	uow               repositories.UnitOfWork
	tournamentRepo    repositories.TournamentRepository
	fixtureRepo       repositories.FixtureRepository
	participationRepo repositories.ParticipationRepository
	logger            *slog.Logger
}

func NewBracketService(
	uow repositories.UnitOfWork,
	tournamentRepo repositories.TournamentRepository,
	fixtureRepo repositories.FixtureRepository,
	participationRepo repositories.ParticipationRepository,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		uow:               uow,
		tournamentRepo:    tournamentRepo,
		fixtureRepo:       fixtureRepo,
		participationRepo: participationRepo,
		logger:            logger,
	}
}

// RenderBracket builds the read-only bracket view for a tournament.
// Fixtures and participations are independent reads and load in
// parallel.
func (s *bracketService) RenderBracket(ctx context.Context, tournamentID int) ([]brackets.BracketNode, error) {
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if t.Status == models.TournamentDeleted {
			return ErrTournamentNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		fixtures       []*models.Fixture
		participations []*models.TeamParticipation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.uow.Do(gctx, func(exec repositories.SQLExecutor) error {
			var loadErr error
			fixtures, loadErr = s.fixtureRepo.ListByTournament(gctx, exec, tournamentID)
			return loadErr
		})
	})
	g.Go(func() error {
		return s.uow.Do(gctx, func(exec repositories.SQLExecutor) error {
			var loadErr error
			participations, loadErr = s.participationRepo.ListByTournament(gctx, exec, tournamentID)
			return loadErr
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[int]string, len(participations))
	for _, p := range participations {
		switch {
		case p.Kind == models.ParticipationByeOpponent:
			names[p.ID] = "BYE"
		case p.Team != nil:
			names[p.ID] = p.Team.Name
		}
	}

	return brackets.BuildBracket(fixtures, names), nil
}
