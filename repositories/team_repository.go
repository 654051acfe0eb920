package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolsports/tournament-engine/models"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamVersionNotFound = errors.New("team has no roster version")
)

type TeamRepository interface {
	ListBySchoolAndSport(ctx context.Context, exec SQLExecutor, schoolID int, sport models.SportType) ([]*models.Team, error)
	CreatePlaceholder(ctx context.Context, exec SQLExecutor, team *models.Team) error
	LatestVersion(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamVersion, error)
}

type postgresTeamRepository struct{}

func NewPostgresTeamRepository() TeamRepository {
	return &postgresTeamRepository{}
}

func (r *postgresTeamRepository) ListBySchoolAndSport(ctx context.Context, exec SQLExecutor, schoolID int, sport models.SportType) ([]*models.Team, error) {
	query := `
		SELECT id, name, sport_type, school_id, coach_id, is_placeholder, created_at
		FROM teams
		WHERE school_id = $1 AND sport_type = $2 AND is_placeholder = FALSE
		ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, schoolID, sport)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.Name,
			&team.SportType,
			&team.SchoolID,
			&team.CoachID,
			&team.IsPlaceholder,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) CreatePlaceholder(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (name, sport_type, school_id, coach_id, is_placeholder)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at`

	team.IsPlaceholder = true
	return exec.QueryRowContext(ctx, query,
		team.Name,
		team.SportType,
		team.SchoolID,
		team.CoachID,
	).Scan(&team.ID, &team.CreatedAt)
}

func (r *postgresTeamRepository) LatestVersion(ctx context.Context, exec SQLExecutor, teamID int) (*models.TeamVersion, error) {
	query := `
		SELECT id, team_id, version, created_at
		FROM team_versions
		WHERE team_id = $1
		ORDER BY version DESC
		LIMIT 1`

	version := &models.TeamVersion{}
	err := exec.QueryRowContext(ctx, query, teamID).Scan(
		&version.ID,
		&version.TeamID,
		&version.Version,
		&version.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamVersionNotFound
		}
		return nil, err
	}
	return version, nil
}
