package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolsports/tournament-engine/models"
	"github.com/schoolsports/tournament-engine/repositories"
)

// resolveTeamPool turns the participating schools into bracket entries:
// one TeamParticipation per team, pinned to the team's latest roster
// version. A school without a team of the tournament's sport
// contributes exactly one placeholder team so every school holds at
// least one slot.
func (s *tournamentService) resolveTeamPool(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, schoolIDs []int) ([]*models.TeamParticipation, error) {
	pool := make([]*models.TeamParticipation, 0, len(schoolIDs))

	for _, schoolID := range schoolIDs {
		school, err := s.schoolRepo.GetByID(ctx, exec, schoolID)
		if err != nil {
			if errors.Is(err, repositories.ErrSchoolNotFound) {
				return nil, fmt.Errorf("%w: school %d", ErrSchoolNotEligible, schoolID)
			}
			return nil, fmt.Errorf("failed to load school %d: %w", schoolID, err)
		}

		teams, err := s.teamRepo.ListBySchoolAndSport(ctx, exec, school.ID, t.SportType)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams for school %d: %w", school.ID, err)
		}

		if len(teams) == 0 {
			placeholder := &models.Team{
				Name:      fmt.Sprintf("DummyTeam%d", school.ID),
				SportType: t.SportType,
				SchoolID:  school.ID,
			}
			if err := s.teamRepo.CreatePlaceholder(ctx, exec, placeholder); err != nil {
				return nil, fmt.Errorf("failed to create placeholder team for school %d: %w", school.ID, err)
			}
			participation := &models.TeamParticipation{
				TournamentID: t.ID,
				TeamID:       placeholder.ID,
				Kind:         models.ParticipationPlaceholder,
				Team:         placeholder,
			}
			if err := s.participationRepo.Create(ctx, exec, participation); err != nil {
				return nil, err
			}
			pool = append(pool, participation)
			continue
		}

		for _, team := range teams {
			version, err := s.teamRepo.LatestVersion(ctx, exec, team.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrTeamVersionNotFound) {
					return nil, fmt.Errorf("%w: team %d", ErrRosterVersionMissing, team.ID)
				}
				return nil, err
			}
			participation := &models.TeamParticipation{
				TournamentID:  t.ID,
				TeamID:        team.ID,
				TeamVersionID: &version.ID,
				Kind:          models.ParticipationReal,
				Team:          team,
			}
			if err := s.participationRepo.Create(ctx, exec, participation); err != nil {
				return nil, err
			}
			pool = append(pool, participation)
		}
	}

	return pool, nil
}
