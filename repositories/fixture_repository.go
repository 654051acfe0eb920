package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/schoolsports/tournament-engine/models"
)

var (
	ErrFixtureNotFound           = errors.New("fixture not found")
	ErrFixtureParticipantInvalid = errors.New("fixture references an invalid participation")
)

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Fixture, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Fixture, error)
	ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.Fixture, error)
	CountWithoutWinner(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateWinner(ctx context.Context, exec SQLExecutor, id int, winnerID int, status models.FixtureStatus, isBye bool) error
	UpdateSlots(ctx context.Context, exec SQLExecutor, id int, p1, p2 *int, status models.FixtureStatus, playersTracked bool) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.FixtureStatus) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, start, end sql.NullTime, location *string) error
	UpdateNextFixture(ctx context.Context, exec SQLExecutor, id int, nextFixtureID, nextSlot *int) error
	HasFeeder(ctx context.Context, exec SQLExecutor, fixtureID, slot int) (bool, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresFixtureRepository struct{}

func NewPostgresFixtureRepository() FixtureRepository {
	return &postgresFixtureRepository{}
}

const fixtureColumns = `
	id, tournament_id, round, participation1_id, participation2_id,
	start_time, end_time, location, is_bye, winner_id, status,
	next_fixture_id, next_slot, players_tracked, created_at`

func (r *postgresFixtureRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures
			(tournament_id, round, participation1_id, participation2_id,
			 start_time, end_time, location, is_bye, winner_id, status,
			 next_fixture_id, next_slot, players_tracked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		f.TournamentID,
		f.Round,
		f.Participation1ID,
		f.Participation2ID,
		f.StartTime,
		f.EndTime,
		f.Location,
		f.IsBye,
		f.WinnerID,
		f.Status,
		f.NextFixtureID,
		f.NextSlot,
		f.PlayersTracked,
	).Scan(&f.ID, &f.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrFixtureParticipantInvalid
	}
	return err
}

func scanFixture(row interface{ Scan(...interface{}) error }, f *models.Fixture) error {
	return row.Scan(
		&f.ID,
		&f.TournamentID,
		&f.Round,
		&f.Participation1ID,
		&f.Participation2ID,
		&f.StartTime,
		&f.EndTime,
		&f.Location,
		&f.IsBye,
		&f.WinnerID,
		&f.Status,
		&f.NextFixtureID,
		&f.NextSlot,
		&f.PlayersTracked,
		&f.CreatedAt,
	)
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`

	f := &models.Fixture{}
	err := scanFixture(exec.QueryRowContext(ctx, query, id), f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return f, nil
}

// ListByTournament returns all fixtures in round order. Within a round
// the id order is the creation order, which is also the bracket order.
func (r *postgresFixtureRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + `
		FROM fixtures
		WHERE tournament_id = $1
		ORDER BY round ASC, id ASC`

	return r.list(ctx, exec, query, tournamentID)
}

func (r *postgresFixtureRepository) ListByRound(ctx context.Context, exec SQLExecutor, tournamentID, round int) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + `
		FROM fixtures
		WHERE tournament_id = $1 AND round = $2
		ORDER BY id ASC`

	return r.list(ctx, exec, query, tournamentID, round)
}

func (r *postgresFixtureRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Fixture, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		var f models.Fixture
		if scanErr := scanFixture(rows, &f); scanErr != nil {
			return nil, scanErr
		}
		fixtures = append(fixtures, &f)
	}
	return fixtures, rows.Err()
}

func (r *postgresFixtureRepository) CountWithoutWinner(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var count int
	err := exec.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fixtures WHERE tournament_id = $1 AND winner_id IS NULL`,
		tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresFixtureRepository) UpdateWinner(ctx context.Context, exec SQLExecutor, id int, winnerID int, status models.FixtureStatus, isBye bool) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE fixtures SET winner_id = $1, status = $2, is_bye = $3 WHERE id = $4`,
		winnerID, status, isBye, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateSlots(ctx context.Context, exec SQLExecutor, id int, p1, p2 *int, status models.FixtureStatus, playersTracked bool) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE fixtures
		 SET participation1_id = $1, participation2_id = $2, status = $3, players_tracked = $4
		 WHERE id = $5`,
		p1, p2, status, playersTracked, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.FixtureStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE fixtures SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, start, end sql.NullTime, location *string) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE fixtures
		 SET start_time = COALESCE($1, start_time),
		     end_time = COALESCE($2, end_time),
		     location = COALESCE($3, location)
		 WHERE id = $4`,
		start, end, location, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateNextFixture(ctx context.Context, exec SQLExecutor, id int, nextFixtureID, nextSlot *int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE fixtures SET next_fixture_id = $1, next_slot = $2 WHERE id = $3`,
		nextFixtureID, nextSlot, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

// HasFeeder reports whether any fixture already routes its winner into
// the given slot of fixtureID.
func (r *postgresFixtureRepository) HasFeeder(ctx context.Context, exec SQLExecutor, fixtureID, slot int) (bool, error) {
	var exists bool
	err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM fixtures WHERE next_fixture_id = $1 AND next_slot = $2)`,
		fixtureID, slot,
	).Scan(&exists)
	return exists, err
}

func (r *postgresFixtureRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM fixtures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM fixtures WHERE tournament_id = $1`, tournamentID)
	return err
}
