package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

type CreateSchoolInput struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	ContactDetails string `json:"contact_details"`
	Domain         string `json:"domain"`
	Passkey        string `json:"passkey"`
}

type SchoolService interface {
	Create(ctx context.Context, actor *models.User, input CreateSchoolInput) (*models.School, error)
	GetByID(ctx context.Context, schoolID int) (*models.School, error)
	List(ctx context.Context) ([]*models.School, error)
}

type schoolService struct {
	uow        repositories.UnitOfWork
	schoolRepo repositories.SchoolRepository
	logger     *slog.Logger
}

func NewSchoolService(uow repositories.UnitOfWork, schoolRepo repositories.SchoolRepository, logger *slog.Logger) SchoolService {
	return &schoolService{uow: uow, schoolRepo: schoolRepo, logger: logger}
}

// Create registers a school. The joining passkey is stored only as a
// bcrypt hash.
func (s *schoolService) Create(ctx context.Context, actor *models.User, input CreateSchoolInput) (*models.School, error) {
	if actor.Role != models.RoleCoach {
		return nil, ErrCoachOnly
	}
	if input.Passkey == "" {
		return nil, ErrPasskeyRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Passkey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash passkey: %w", err)
	}

	school := &models.School{
		Name:           input.Name,
		Address:        input.Address,
		ContactDetails: input.ContactDetails,
		Domain:         input.Domain,
		PasskeyHash:    string(hash),
	}
	err = s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		if createErr := s.schoolRepo.Create(ctx, exec, school); createErr != nil {
			if errors.Is(createErr, repositories.ErrSchoolNameConflict) {
				return ErrSchoolNameInUse
			}
			return createErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("school created", slog.Int("school_id", school.ID), slog.String("name", school.Name))
	return school, nil
}

func (s *schoolService) GetByID(ctx context.Context, schoolID int) (*models.School, error) {
	var school *models.School
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		loaded, loadErr := s.schoolRepo.GetByID(ctx, exec, schoolID)
		if loadErr != nil {
			if errors.Is(loadErr, repositories.ErrSchoolNotFound) {
				return ErrSchoolNotFound
			}
			return loadErr
		}
		school = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return school, nil
}

func (s *schoolService) List(ctx context.Context) ([]*models.School, error) {
	var schools []*models.School
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		schools, listErr = s.schoolRepo.List(ctx, exec)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return schools, nil
}
