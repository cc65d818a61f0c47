package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/repositories"
	"github.com/myckhel/turfHub-sub002/storage"
)

type TeamService interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]*models.Team, error)
	UploadBadge(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)
	RemoveBadge(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader}
}

func (s *teamService) Create(ctx context.Context, team *models.Team) error {
	if team.Name == "" {
		return fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", id, err)
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) List(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	teams, err := s.teamRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		populateTeamLogoURL(team, s.uploader)
	}
	return teams, nil
}

func (s *teamService) UploadBadge(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("teams/%d/badge-%d%s", id, time.Now().Unix(), filepath.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload team badge: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return "", fmt.Errorf("failed to store team badge key: %w", err)
	}
	// Old badge cleanup is best effort; a stale object is harmless.
	if team.LogoKey != nil && *team.LogoKey != "" && *team.LogoKey != result.Key {
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}
	return s.uploader.GetPublicURL(result.Key), nil
}

func (s *teamService) RemoveBadge(ctx context.Context, id int) error {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if team.LogoKey == nil || *team.LogoKey == "" {
		return nil
	}
	if s.uploader != nil {
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}
	return s.teamRepo.UpdateLogoKey(ctx, id, nil)
}
