package repositories

import (
	"context"

	"github.com/schoolsports/tournament-engine/models"
)

// ScoreLogRepository is append-only: entries are never updated or
// deleted once written.
type ScoreLogRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.ScoreLogEntry) error
	ListByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) ([]*models.ScoreLogEntry, error)
}

type postgresScoreLogRepository struct{}

func NewPostgresScoreLogRepository() ScoreLogRepository {
	return &postgresScoreLogRepository{}
}

func (r *postgresScoreLogRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.ScoreLogEntry) error {
	query := `
		INSERT INTO score_log_entries (fixture_id, event_type, participation_id, player_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return exec.QueryRowContext(ctx, query,
		entry.FixtureID,
		entry.EventType,
		entry.ParticipationID,
		entry.PlayerID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *postgresScoreLogRepository) ListByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) ([]*models.ScoreLogEntry, error) {
	query := `
		SELECT id, fixture_id, event_type, participation_id, player_id, created_at
		FROM score_log_entries
		WHERE fixture_id = $1
		ORDER BY id ASC`

	rows, err := exec.QueryContext(ctx, query, fixtureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.ScoreLogEntry, 0)
	for rows.Next() {
		var entry models.ScoreLogEntry
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.FixtureID,
			&entry.EventType,
			&entry.ParticipationID,
			&entry.PlayerID,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
