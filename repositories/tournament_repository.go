package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/schoolsports/tournament-engine/models"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrParticipatingSchoolExists = errors.New("school already participates in this tournament")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	ListBySchool(ctx context.Context, exec SQLExecutor, schoolID int) ([]*models.Tournament, error)

	CreateDay(ctx context.Context, exec SQLExecutor, day *models.TournamentDay) error
	ListDays(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentDay, error)
	DeleteDays(ctx context.Context, exec SQLExecutor, tournamentID int) error

	AddParticipatingSchool(ctx context.Context, exec SQLExecutor, tournamentID, schoolID int) error
	ListParticipatingSchools(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error)
	DeleteParticipatingSchools(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTournamentRepository struct{}

func NewPostgresTournamentRepository() TournamentRepository {
	return &postgresTournamentRepository{}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, sport_type, location, start_date, end_date,
			 match_duration_minutes, match_interval_minutes,
			 organizing_school_id, organizer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	return exec.QueryRowContext(ctx, query,
		t.Name,
		t.SportType,
		t.Location,
		t.StartDate,
		t.EndDate,
		t.MatchDurationMin,
		t.MatchIntervalMin,
		t.OrganizingSchoolID,
		t.OrganizerID,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, sport_type, location, start_date, end_date,
		       match_duration_minutes, match_interval_minutes,
		       organizing_school_id, organizer_id, status, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.SportType,
		&t.Location,
		&t.StartDate,
		&t.EndDate,
		&t.MatchDurationMin,
		&t.MatchIntervalMin,
		&t.OrganizingSchoolID,
		&t.OrganizerID,
		&t.Status,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, sport_type = $2, location = $3, start_date = $4, end_date = $5,
		    match_duration_minutes = $6, match_interval_minutes = $7
		WHERE id = $8`

	result, err := exec.ExecContext(ctx, query,
		t.Name,
		t.SportType,
		t.Location,
		t.StartDate,
		t.EndDate,
		t.MatchDurationMin,
		t.MatchIntervalMin,
		t.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListBySchool(ctx context.Context, exec SQLExecutor, schoolID int) ([]*models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.sport_type, t.location, t.start_date, t.end_date,
		       t.match_duration_minutes, t.match_interval_minutes,
		       t.organizing_school_id, t.organizer_id, t.status, t.created_at
		FROM tournaments t
		JOIN participating_schools ps ON ps.tournament_id = t.id
		WHERE ps.school_id = $1 AND t.status <> $2
		ORDER BY t.start_date ASC`

	rows, err := exec.QueryContext(ctx, query, schoolID, models.TournamentDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID,
			&t.Name,
			&t.SportType,
			&t.Location,
			&t.StartDate,
			&t.EndDate,
			&t.MatchDurationMin,
			&t.MatchIntervalMin,
			&t.OrganizingSchoolID,
			&t.OrganizerID,
			&t.Status,
			&t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) CreateDay(ctx context.Context, exec SQLExecutor, day *models.TournamentDay) error {
	query := `
		INSERT INTO tournament_days (tournament_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return exec.QueryRowContext(ctx, query,
		day.TournamentID,
		day.Date,
		day.StartTime,
		day.EndTime,
	).Scan(&day.ID)
}

func (r *postgresTournamentRepository) ListDays(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentDay, error) {
	query := `
		SELECT id, tournament_id, date, start_time, end_time
		FROM tournament_days
		WHERE tournament_id = $1
		ORDER BY start_time ASC`

	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]models.TournamentDay, 0)
	for rows.Next() {
		var day models.TournamentDay
		if scanErr := rows.Scan(&day.ID, &day.TournamentID, &day.Date, &day.StartTime, &day.EndTime); scanErr != nil {
			return nil, scanErr
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (r *postgresTournamentRepository) DeleteDays(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM tournament_days WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresTournamentRepository) AddParticipatingSchool(ctx context.Context, exec SQLExecutor, tournamentID, schoolID int) error {
	query := `
		INSERT INTO participating_schools (tournament_id, school_id)
		VALUES ($1, $2)`

	_, err := exec.ExecContext(ctx, query, tournamentID, schoolID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrParticipatingSchoolExists
	}
	return err
}

func (r *postgresTournamentRepository) ListParticipatingSchools(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error) {
	query := `
		SELECT school_id
		FROM participating_schools
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schoolIDs := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		schoolIDs = append(schoolIDs, id)
	}
	return schoolIDs, rows.Err()
}

func (r *postgresTournamentRepository) DeleteParticipatingSchools(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM participating_schools WHERE tournament_id = $1`, tournamentID)
	return err
}
