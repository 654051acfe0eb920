package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

type CreateEventInput struct {
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsInterHouse bool      `json:"is_inter_house"`
}

type EditEventInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// EventService manages standalone calendar entries. Fixture-derived
// events are owned by the tournament and fixture services and cannot be
// edited here.
type EventService interface {
	Create(ctx context.Context, actor *models.User, input CreateEventInput) (*models.CalendarEvent, error)
	Edit(ctx context.Context, actor *models.User, eventID int, input EditEventInput) (*models.CalendarEvent, error)
	Delete(ctx context.Context, actor *models.User, eventID int) error
	ListBySchool(ctx context.Context, schoolID int) ([]*models.CalendarEvent, error)
}

type eventService struct {
	uow       repositories.UnitOfWork
	eventRepo repositories.EventRepository
	logger    *slog.Logger
}

func NewEventService(uow repositories.UnitOfWork, eventRepo repositories.EventRepository, logger *slog.Logger) EventService {
	return &eventService{uow: uow, eventRepo: eventRepo, logger: logger}
}

func (s *eventService) Create(ctx context.Context, actor *models.User, input CreateEventInput) (*models.CalendarEvent, error) {
	if actor.Role != models.RoleCoach {
		return nil, ErrCoachOnly
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	event := &models.CalendarEvent{
		SchoolID:     actor.SchoolID,
		Title:        input.Title,
		Description:  input.Description,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		IsInterHouse: input.IsInterHouse,
	}
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		return s.eventRepo.Create(ctx, exec, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calendar event created",
		slog.Int("event_id", event.ID), slog.Int("school_id", event.SchoolID))
	return event, nil
}

func (s *eventService) Edit(ctx context.Context, actor *models.User, eventID int, input EditEventInput) (*models.CalendarEvent, error) {
	var out *models.CalendarEvent
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		event, err := s.loadOwnEvent(ctx, exec, actor, eventID)
		if err != nil {
			return err
		}
		if event.FixtureID != nil {
			return ErrEventNotEditable
		}

		if input.Title != nil {
			event.Title = *input.Title
		}
		if input.Description != nil {
			event.Description = input.Description
		}
		if input.StartDate != nil {
			event.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			event.EndDate = *input.EndDate
		}
		if !event.EndDate.After(event.StartDate) {
			return ErrInvalidDateRange
		}
		if err := s.eventRepo.Update(ctx, exec, event); err != nil {
			return err
		}
		out = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *eventService) Delete(ctx context.Context, actor *models.User, eventID int) error {
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		event, err := s.loadOwnEvent(ctx, exec, actor, eventID)
		if err != nil {
			return err
		}
		if event.FixtureID != nil {
			return ErrEventNotEditable
		}
		return s.eventRepo.Delete(ctx, exec, event.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("calendar event deleted", slog.Int("event_id", eventID))
	return nil
}

func (s *eventService) ListBySchool(ctx context.Context, schoolID int) ([]*models.CalendarEvent, error) {
	var events []*models.CalendarEvent
	err := s.uow.Do(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		events, listErr = s.eventRepo.ListBySchool(ctx, exec, schoolID)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// loadOwnEvent fetches an event and rejects actors from a different
// school or without the coach role.
func (s *eventService) loadOwnEvent(ctx context.Context, exec repositories.SQLExecutor, actor *models.User, eventID int) (*models.CalendarEvent, error) {
	if actor.Role != models.RoleCoach {
		return nil, ErrCoachOnly
	}
	event, err := s.eventRepo.GetByID(ctx, exec, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.SchoolID != actor.SchoolID {
		return nil, ErrEventNotFound
	}
	return event, nil
}
