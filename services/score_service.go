package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/schoolsports/tournament-engine/live"
	"github.com/schoolsports/tournament-engine/metrics"
	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

type LogEventInput struct {
	EventType       models.ScoreEventType `json:"event_type"`
	ParticipationID int                   `json:"participation_id"`
	PlayerID        *int                  `json:"player_id,omitempty"`
}

// ScoreBroadcast is the payload pushed to live subscribers of a fixture
// after each logged event.
type ScoreBroadcast struct {
	FixtureID       int                   `json:"fixture_id"`
	EventType       models.ScoreEventType `json:"event_type"`
	ParticipationID int                   `json:"participation_id"`
	PlayerID        *int                  `json:"player_id,omitempty"`
	HomeScore       string                `json:"home_score"`
	AwayScore       string                `json:"away_score"`
	FinalScore      string                `json:"final_score"`
}

// MatchDetails is the query-side view of one fixture: its current
// state, running result and full event history.
type MatchDetails struct {
	Fixture  *models.Fixture         `json:"fixture"`
	Result   *models.MatchResult     `json:"result,omitempty"`
	ScoreLog []*models.ScoreLogEntry `json:"score_log"`
}

type ScoreService interface {
	LogEvent(ctx context.Context, actor *models.User, fixtureID int, input LogEventInput) (*models.ScoreLogEntry, error)
	GetMatchDetails(ctx context.Context, fixtureID int) (*MatchDetails, error)
}

type scoreService struct {
	uow          repositories.UnitOfWork
	fixtureRepo  repositories.FixtureRepository
	resultRepo   repositories.ResultRepository
	scoreLogRepo repositories.ScoreLogRepository
	publisher    live.Publisher
	logger       *slog.Logger
}

func NewScoreService(
	uow repositories.UnitOfWork,
	fixtureRepo repositories.FixtureRepository,
	resultRepo repositories.ResultRepository,
	scoreLogRepo repositories.ScoreLogRepository,
	publisher live.Publisher,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		uow:          uow,
		fixtureRepo:  fixtureRepo,
		resultRepo:   resultRepo,
		scoreLogRepo: scoreLogRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// LogEvent appends one in-match event, updates the running score on a
// goal, and broadcasts the event to live subscribers. The broadcast is
// fire-and-forget and happens only after the write commits.
func (s *scoreService) LogEvent(ctx context.Context, actor *models.User, fixtureID int, input LogEventInput) (*models.ScoreLogEntry, error) {
	if !actor.Moderator {
		return nil, ErrModeratorOnly
	}
	if !models.ValidScoreEventType(input.EventType) {
		return nil, ErrInvalidEventType
	}

	var (
		entry     *models.ScoreLogEntry
		broadcast ScoreBroadcast
	)
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		f, err := s.fixtureRepo.GetByID(ctx, exec, fixtureID)
		if err != nil {
			if errors.Is(err, repositories.ErrFixtureNotFound) {
				return ErrFixtureNotFound
			}
			return err
		}
		if !f.HasParticipation(input.ParticipationID) {
			return ErrTeamNotInFixture
		}
		if f.WinnerID != nil {
			return ErrFixtureAlreadyDecided
		}

		broadcast = ScoreBroadcast{
			FixtureID:       f.ID,
			EventType:       input.EventType,
			ParticipationID: input.ParticipationID,
			PlayerID:        input.PlayerID,
		}

		// Per-player entries are skipped for fixtures without tracked
		// rosters; the running score still updates below.
		if f.PlayersTracked {
			entry = &models.ScoreLogEntry{
				FixtureID:       f.ID,
				EventType:       input.EventType,
				ParticipationID: input.ParticipationID,
				PlayerID:        input.PlayerID,
			}
			if err := s.scoreLogRepo.Create(ctx, exec, entry); err != nil {
				return err
			}
		}

		if input.EventType == models.EventGoal {
			result, err := s.resultRepo.GetByFixture(ctx, exec, f.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrMatchResultNotFound) {
					return ErrMatchResultNotFound
				}
				return err
			}
			home, err := strconv.Atoi(result.HomeScore)
			if err != nil {
				return fmt.Errorf("corrupt home score %q on result %d: %w", result.HomeScore, result.ID, err)
			}
			away, err := strconv.Atoi(result.AwayScore)
			if err != nil {
				return fmt.Errorf("corrupt away score %q on result %d: %w", result.AwayScore, result.ID, err)
			}
			if input.ParticipationID == result.HomeParticipationID {
				home++
			} else {
				away++
			}
			result.HomeScore = strconv.Itoa(home)
			result.AwayScore = strconv.Itoa(away)
			result.FinalScore = fmt.Sprintf("%d-%d", home, away)
			if err := s.resultRepo.UpdateScore(ctx, exec, result.ID, result.HomeScore, result.AwayScore, result.FinalScore); err != nil {
				return err
			}
			broadcast.HomeScore = result.HomeScore
			broadcast.AwayScore = result.AwayScore
			broadcast.FinalScore = result.FinalScore
		}

		if f.Status == models.FixtureStarted {
			if err := s.fixtureRepo.UpdateStatus(ctx, exec, f.ID, models.FixtureLive); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ScoreEvents.WithLabelValues(string(input.EventType)).Inc()
	s.publisher.Publish(live.FixtureTopic(fixtureID), broadcast)
	s.logger.Info("score event logged",
		slog.Int("fixture_id", fixtureID),
		slog.String("event_type", string(input.EventType)),
		slog.Int("participation_id", input.ParticipationID))
	return entry, nil
}

// GetMatchDetails returns the fixture with its result and event
// history. Fixtures that never started have no result.
func (s *scoreService) GetMatchDetails(ctx context.Context, fixtureID int) (*MatchDetails, error) {
	details := &MatchDetails{}
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		f, err := s.fixtureRepo.GetByID(ctx, exec, fixtureID)
		if err != nil {
			if errors.Is(err, repositories.ErrFixtureNotFound) {
				return ErrFixtureNotFound
			}
			return err
		}
		details.Fixture = f

		result, err := s.resultRepo.GetByFixture(ctx, exec, f.ID)
		if err != nil && !errors.Is(err, repositories.ErrMatchResultNotFound) {
			return err
		}
		details.Result = result

		log, err := s.scoreLogRepo.ListByFixture(ctx, exec, f.ID)
		if err != nil {
			return err
		}
		details.ScoreLog = log
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
