package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/schoolsports/tournament-engine/models"
)

var (
	ErrParticipationNotFound = errors.New("team participation not found")
	ErrParticipationInvalid  = errors.New("team participation references an invalid team or tournament")
)

type ParticipationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.TeamParticipation) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TeamParticipation, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TeamParticipation, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresParticipationRepository struct{}

func NewPostgresParticipationRepository() ParticipationRepository {
	return &postgresParticipationRepository{}
}

func (r *postgresParticipationRepository) Create(ctx context.Context, exec SQLExecutor, p *models.TeamParticipation) error {
	query := `
		INSERT INTO team_participations (tournament_id, team_id, team_version_id, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		p.TournamentID,
		p.TeamID,
		p.TeamVersionID,
		p.Kind,
	).Scan(&p.ID, &p.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrParticipationInvalid
	}
	return err
}

func (r *postgresParticipationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.TeamParticipation, error) {
	query := `
		SELECT id, tournament_id, team_id, team_version_id, kind, created_at
		FROM team_participations
		WHERE id = $1`

	p := &models.TeamParticipation{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.TournamentID,
		&p.TeamID,
		&p.TeamVersionID,
		&p.Kind,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByTournament returns the tournament's participations with their
// teams preloaded, in creation order.
func (r *postgresParticipationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TeamParticipation, error) {
	query := `
		SELECT p.id, p.tournament_id, p.team_id, p.team_version_id, p.kind, p.created_at,
		       t.id, t.name, t.sport_type, t.school_id, t.coach_id, t.is_placeholder, t.created_at
		FROM team_participations p
		JOIN teams t ON t.id = p.team_id
		WHERE p.tournament_id = $1
		ORDER BY p.id ASC`

	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participations := make([]*models.TeamParticipation, 0)
	for rows.Next() {
		var p models.TeamParticipation
		var team models.Team
		if scanErr := rows.Scan(
			&p.ID,
			&p.TournamentID,
			&p.TeamID,
			&p.TeamVersionID,
			&p.Kind,
			&p.CreatedAt,
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
		p.Team = &team
		participations = append(participations, &p)
	}
	return participations, rows.Err()
}

func (r *postgresParticipationRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM team_participations WHERE tournament_id = $1`, tournamentID)
	return err
}
