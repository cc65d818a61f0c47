package services

import (
	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/storage"
)

// isValidStageTransition implements the stage state machine: pending→active,
// active→completed, cancellation from pending or active. Completed and
// cancelled are terminal.
func isValidStageTransition(current, next models.StageStatus) bool {
	allowedTransitions := map[models.StageStatus][]models.StageStatus{
		models.StageStatusPending:   {models.StageStatusActive, models.StageStatusCancelled},
		models.StageStatusActive:    {models.StageStatusCompleted, models.StageStatusCancelled},
		models.StageStatusCompleted: {},
		models.StageStatusCancelled: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

func populateTournamentLogoURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.LogoKey != nil && *tournament.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.LogoKey)
		if url != "" {
			tournament.LogoURL = &url
		}
	}
}

func stageTeamsToValues(slice []*models.StageTeam) []models.StageTeam {
	result := make([]models.StageTeam, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func groupsToValues(slice []*models.Group) []models.Group {
	result := make([]models.Group, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func fixturesToValues(slice []*models.Fixture) []models.Fixture {
	result := make([]models.Fixture, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func rankingsToValues(slice []*models.Ranking) []models.Ranking {
	result := make([]models.Ranking, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}
