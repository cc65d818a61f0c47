package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/repositories"
	"github.com/myckhel/turfHub-sub002/storage"
	"golang.org/x/sync/errgroup"
)

// groupNames labels groups "Group A".."Group Z" by position.
const groupNames = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TeamSeed assigns a team into a stage at a seed position.
type TeamSeed struct {
	TeamID int `json:"team_id"`
	Seed   int `json:"seed"`
}

type TournamentService interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetFull(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)

	AddStage(ctx context.Context, stage *models.Stage) error
	DeleteStage(ctx context.Context, stageID int) error
	AssignTeams(ctx context.Context, stageID int, seeds []TeamSeed) error
	RemoveTeam(ctx context.Context, stageID, teamID int) error
}

type tournamentService struct {
	transactor     repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	stageRepo      repositories.StageRepository
	stageTeamRepo  repositories.StageTeamRepository
	groupRepo      repositories.GroupRepository
	teamRepo       repositories.TeamRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	transactor repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		transactor:     transactor,
		tournamentRepo: tournamentRepo,
		stageRepo:      stageRepo,
		stageTeamRepo:  stageTeamRepo,
		groupRepo:      groupRepo,
		teamRepo:       teamRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.Name == "" {
		return fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	switch tournament.Type {
	case models.TournamentSingleSession, models.TournamentMultiStage:
	default:
		return fmt.Errorf("%w: unknown tournament type %q", ErrValidationFailed, tournament.Type)
	}
	if !tournament.EndDate.IsZero() && tournament.EndDate.Before(tournament.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrValidationFailed)
	}
	if tournament.Status == "" {
		tournament.Status = models.TournamentStatusDraft
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", tournament.ID), slog.String("name", tournament.Name))
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

// GetFull loads the tournament together with its stage chain.
func (s *tournamentService) GetFull(ctx context.Context, id int) (*models.Tournament, error) {
	var tournament *models.Tournament
	var stages []*models.Stage

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.GetByID(gCtx, id)
		if err != nil {
			return err
		}
		tournament = loaded
		return nil
	})
	g.Go(func() error {
		loaded, err := s.stageRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list stages for tournament %d: %w", id, err)
		}
		stages = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Stages = make([]models.Stage, 0, len(stages))
	for _, stage := range stages {
		tournament.Stages = append(tournament.Stages, *stage)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, tournament := range tournaments {
		populateTournamentLogoURL(tournament, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	switch status {
	case models.TournamentStatusDraft, models.TournamentStatusActive,
		models.TournamentStatusCompleted, models.TournamentStatusCanceled:
	default:
		return fmt.Errorf("%w: unknown tournament status %q", ErrValidationFailed, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return "", err
	}
	key := fmt.Sprintf("tournaments/%d/logo-%d%s", id, time.Now().Unix(), filepath.Ext(filename))
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return "", fmt.Errorf("failed to store tournament logo key: %w", err)
	}
	return s.uploader.GetPublicURL(result.Key), nil
}

// AddStage creates a stage and, for group formats, its groups alongside in
// one transaction. Settings must already carry the variant matching the
// stage type.
func (s *tournamentService) AddStage(ctx context.Context, stage *models.Stage) error {
	if stage.Name == "" {
		return fmt.Errorf("%w: stage name is required", ErrValidationFailed)
	}
	if _, err := s.tournamentRepo.GetByID(ctx, stage.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", stage.TournamentID, err)
	}

	encoded, err := models.EncodeStageSettings(stage.Settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	// Round-trip through the decoder to apply defaults and reject mismatched
	// variants before anything is written.
	stage.Settings, err = models.DecodeStageSettings(stage.Type, &encoded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if stage.Status == "" {
		stage.Status = models.StageStatusPending
	}

	return s.transactor.InTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.stageRepo.Create(ctx, exec, stage); err != nil {
			return fmt.Errorf("failed to create stage: %w", err)
		}
		if stage.Type != models.StageTypeGroup {
			return nil
		}
		count := stage.Settings.Group.GroupsCount
		if count < 2 || count > len(groupNames) {
			return fmt.Errorf("%w: groups_count %d out of range", ErrInvalidGroupConfiguration, count)
		}
		for position := 1; position <= count; position++ {
			group := &models.Group{
				StageID:  stage.ID,
				Name:     fmt.Sprintf("Group %c", groupNames[position-1]),
				Position: position,
			}
			if err := s.groupRepo.Create(ctx, exec, group); err != nil {
				return fmt.Errorf("failed to create group %d: %w", position, err)
			}
		}
		return nil
	})
}

func (s *tournamentService) DeleteStage(ctx context.Context, stageID int) error {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.Status != models.StageStatusPending {
		return fmt.Errorf("%w: only pending stages can be deleted", ErrStageNotPending)
	}
	return s.stageRepo.Delete(ctx, nil, stageID)
}

// AssignTeams replaces the stage's team list. For group stages the seeds are
// distributed over the groups in snake order (1,2,..,k then k,..,2,1) so
// every group gets a comparable strength spread.
func (s *tournamentService) AssignTeams(ctx context.Context, stageID int, seeds []TeamSeed) error {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.Status != models.StageStatusPending {
		return fmt.Errorf("%w: teams can only be assigned while pending", ErrStageNotPending)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("%w: at least one team is required", ErrValidationFailed)
	}
	seen := make(map[int]bool, len(seeds))
	teamIDs := make([]int, 0, len(seeds))
	for _, seed := range seeds {
		if seen[seed.TeamID] {
			return fmt.Errorf("%w: team %d listed twice", ErrValidationFailed, seed.TeamID)
		}
		seen[seed.TeamID] = true
		teamIDs = append(teamIDs, seed.TeamID)
	}
	teams, err := s.teamRepo.ListByIDs(ctx, teamIDs)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}
	if len(teams) != len(teamIDs) {
		return fmt.Errorf("%w: one or more teams do not exist", ErrTeamNotFound)
	}

	var groups []*models.Group
	if stage.Type == models.StageTypeGroup {
		groups, err = s.groupRepo.ListByStage(ctx, nil, stageID)
		if err != nil {
			return fmt.Errorf("failed to list groups for stage %d: %w", stageID, err)
		}
		if len(groups) < 2 {
			return fmt.Errorf("%w: stage %d has no groups", ErrInvalidGroupConfiguration, stageID)
		}
	}

	entries := make([]*models.StageTeam, 0, len(seeds))
	for i, seed := range seeds {
		entry := &models.StageTeam{StageID: stageID, TeamID: seed.TeamID, Seed: seed.Seed}
		if entry.Seed == 0 {
			entry.Seed = i + 1
		}
		entries = append(entries, entry)
	}
	if len(groups) > 0 {
		assignGroupsSnake(entries, groups)
	}

	return s.transactor.InTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.stageTeamRepo.DeleteByStage(ctx, exec, stageID); err != nil {
			return fmt.Errorf("failed to clear stage teams: %w", err)
		}
		if err := s.stageTeamRepo.CreateBatch(ctx, exec, entries); err != nil {
			if errors.Is(err, repositories.ErrStageTeamConflict) {
				return fmt.Errorf("%w: duplicate stage team", ErrValidationFailed)
			}
			return err
		}
		return nil
	})
}

// assignGroupsSnake walks entries in seed order and deals them into groups
// boustrophedon: forward across the groups, then backward, repeating.
func assignGroupsSnake(entries []*models.StageTeam, groups []*models.Group) {
	ordered := make([]*models.StageTeam, len(entries))
	copy(ordered, entries)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Seed < ordered[i].Seed {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	k := len(groups)
	for i, entry := range ordered {
		lap, pos := i/k, i%k
		if lap%2 == 1 {
			pos = k - 1 - pos
		}
		groupID := groups[pos].ID
		entry.GroupID = &groupID
	}
}

func (s *tournamentService) RemoveTeam(ctx context.Context, stageID, teamID int) error {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.Status != models.StageStatusPending {
		return fmt.Errorf("%w: teams can only be removed while pending", ErrStageNotPending)
	}
	assignments, err := s.stageTeamRepo.ListByStage(ctx, nil, stageID, false)
	if err != nil {
		return fmt.Errorf("failed to list stage teams: %w", err)
	}
	for _, assignment := range assignments {
		if assignment.TeamID == teamID {
			return s.stageTeamRepo.Delete(ctx, nil, assignment.ID)
		}
	}
	return fmt.Errorf("%w: team %d is not assigned to stage %d", ErrTeamNotFound, teamID, stageID)
}
