package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolsports/tournament-engine/models"
)

var ErrMatchResultNotFound = errors.New("match result not found")

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
	GetByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) (*models.MatchResult, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore, finalScore string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresResultRepository struct{}

func NewPostgresResultRepository() ResultRepository {
	return &postgresResultRepository{}
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error {
	query := `
		INSERT INTO match_results
			(fixture_id, home_participation_id, away_participation_id,
			 home_score, away_score, final_score, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return exec.QueryRowContext(ctx, query,
		result.FixtureID,
		result.HomeParticipationID,
		result.AwayParticipationID,
		result.HomeScore,
		result.AwayScore,
		result.FinalScore,
		result.Confirmed,
	).Scan(&result.ID, &result.CreatedAt)
}

func (r *postgresResultRepository) GetByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) (*models.MatchResult, error) {
	query := `
		SELECT id, fixture_id, home_participation_id, away_participation_id,
		       home_score, away_score, final_score, confirmed, created_at
		FROM match_results
		WHERE fixture_id = $1`

	result := &models.MatchResult{}
	err := exec.QueryRowContext(ctx, query, fixtureID).Scan(
		&result.ID,
		&result.FixtureID,
		&result.HomeParticipationID,
		&result.AwayParticipationID,
		&result.HomeScore,
		&result.AwayScore,
		&result.FinalScore,
		&result.Confirmed,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (r *postgresResultRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore, finalScore string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE match_results SET home_score = $1, away_score = $2, final_score = $3 WHERE id = $4`,
		homeScore, awayScore, finalScore, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchResultNotFound)
}

func (r *postgresResultRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `
		DELETE FROM match_results
		WHERE fixture_id IN (SELECT id FROM fixtures WHERE tournament_id = $1)`

	_, err := exec.ExecContext(ctx, query, tournamentID)
	return err
}
