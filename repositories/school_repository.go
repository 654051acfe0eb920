package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/schoolsports/tournament-engine/models"
)

var (
	ErrSchoolNotFound     = errors.New("school not found")
	ErrSchoolNameConflict = errors.New("school name or domain already in use")
)

type SchoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, school *models.School) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.School, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.School, error)
}

type postgresSchoolRepository struct{}

func NewPostgresSchoolRepository() SchoolRepository {
	return &postgresSchoolRepository{}
}

func (r *postgresSchoolRepository) Create(ctx context.Context, exec SQLExecutor, school *models.School) error {
	query := `
		INSERT INTO schools (name, address, contact_details, domain, passkey_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		school.Name,
		school.Address,
		school.ContactDetails,
		school.Domain,
		school.PasskeyHash,
	).Scan(&school.ID, &school.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrSchoolNameConflict
	}
	return err
}

func (r *postgresSchoolRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.School, error) {
	query := `
		SELECT id, name, address, contact_details, domain, passkey_hash, created_at
		FROM schools
		WHERE id = $1`

	school := &models.School{}
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&school.ID,
		&school.Name,
		&school.Address,
		&school.ContactDetails,
		&school.Domain,
		&school.PasskeyHash,
		&school.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return school, nil
}

func (r *postgresSchoolRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.School, error) {
	query := `
		SELECT id, name, address, contact_details, domain, passkey_hash, created_at
		FROM schools
		ORDER BY name ASC`

	rows, err := exec.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schools := make([]*models.School, 0)
	for rows.Next() {
		var school models.School
		if scanErr := rows.Scan(
			&school.ID,
			&school.Name,
			&school.Address,
			&school.ContactDetails,
			&school.Domain,
			&school.PasskeyHash,
			&school.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		schools = append(schools, &school)
	}
	return schools, rows.Err()
}
