package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/schoolsports/tournament-engine/models"
)

var ErrEventNotFound = errors.New("calendar event not found")

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.CalendarEvent) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.CalendarEvent, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.CalendarEvent) error
	UpdateScheduleByFixture(ctx context.Context, exec SQLExecutor, fixtureID int, start, end time.Time) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	ListBySchool(ctx context.Context, exec SQLExecutor, schoolID int) ([]*models.CalendarEvent, error)
}

type postgresEventRepository struct{}

func NewPostgresEventRepository() EventRepository {
	return &postgresEventRepository{}
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, event *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events
			(school_id, tournament_id, fixture_id, title, description,
			 start_date, end_date, is_inter_house)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	return exec.QueryRowContext(ctx, query,
		event.SchoolID,
		event.TournamentID,
		event.FixtureID,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.IsInterHouse,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.CalendarEvent, error) {
	query := `
		SELECT id, school_id, tournament_id, fixture_id, title, description,
		       start_date, end_date, is_inter_house, created_at
		FROM calendar_events
		WHERE id = $1`

	event := &models.CalendarEvent{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.SchoolID,
		&event.TournamentID,
		&event.FixtureID,
		&event.Title,
		&event.Description,
		&event.StartDate,
		&event.EndDate,
		&event.IsInterHouse,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, event *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $1, description = $2, start_date = $3, end_date = $4
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateScheduleByFixture(ctx context.Context, exec SQLExecutor, fixtureID int, start, end time.Time) error {
	_, err := exec.ExecContext(ctx,
		`UPDATE calendar_events SET start_date = $1, end_date = $2 WHERE fixture_id = $3`,
		start, end, fixtureID)
	return err
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) DeleteByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM calendar_events WHERE fixture_id = $1`, fixtureID)
	return err
}

func (r *postgresEventRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM calendar_events WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresEventRepository) ListBySchool(ctx context.Context, exec SQLExecutor, schoolID int) ([]*models.CalendarEvent, error) {
	query := `
		SELECT id, school_id, tournament_id, fixture_id, title, description,
		       start_date, end_date, is_inter_house, created_at
		FROM calendar_events
		WHERE school_id = $1
		ORDER BY start_date ASC`

	rows, err := exec.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.CalendarEvent, 0)
	for rows.Next() {
		var event models.CalendarEvent
		if scanErr := rows.Scan(
			&event.ID,
			&event.SchoolID,
			&event.TournamentID,
			&event.FixtureID,
			&event.Title,
			&event.Description,
			&event.StartDate,
			&event.EndDate,
			&event.IsInterHouse,
			&event.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
