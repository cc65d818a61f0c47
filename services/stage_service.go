package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myckhel/turfHub-sub002/fixtures"
	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/repositories"
	"github.com/myckhel/turfHub-sub002/standings"
	"golang.org/x/sync/errgroup"
)

// GenerationMode selects how GenerateFixtures treats existing fixtures.
type GenerationMode string

const (
	// ModeInitial generates the first fixture set; the stage must be pending
	// with no fixtures yet.
	ModeInitial GenerationMode = "initial"
	// ModeRegenerate replaces an existing set: the previous fixtures are
	// deleted and the new ones inserted inside one transaction.
	ModeRegenerate GenerationMode = "regenerate"
	// ModeNextRound appends one more swiss round paired from current
	// standings; only valid for active swiss stages.
	ModeNextRound GenerationMode = "next_round"
)

// Stage lifecycle events pushed through the notifier.
const (
	EventStageStarted      = "STAGE_STARTED"
	EventStageCompleted    = "STAGE_COMPLETED"
	EventStageCancelled    = "STAGE_CANCELLED"
	EventFixturesGenerated = "FIXTURES_GENERATED"
	EventRankingsUpdated   = "RANKINGS_UPDATED"
)

// StageNotifier pushes lifecycle events to connected clients. Implemented by
// live.Hub; a nil notifier disables broadcasting.
type StageNotifier interface {
	BroadcastStageEvent(stageID int, event string, payload interface{})
}

type StageService interface {
	Start(ctx context.Context, stageID int) (*models.Stage, error)
	Complete(ctx context.Context, stageID int) (*models.Stage, error)
	Cancel(ctx context.Context, stageID int) (*models.Stage, error)

	GenerateFixtures(ctx context.Context, stageID int, mode GenerationMode) ([]*models.Fixture, error)
	ComputeRankings(ctx context.Context, stageID int) ([]*models.Ranking, error)

	ListFixtures(ctx context.Context, stageID int) ([]*models.Fixture, error)
	ListRankings(ctx context.Context, stageID int) ([]*models.Ranking, error)
	ListGroupRankings(ctx context.Context, stageID, groupID int) ([]*models.Ranking, error)
	GetStageDetail(ctx context.Context, stageID int) (*models.Stage, error)
}

type stageService struct {
	transactor    repositories.Transactor
	stageRepo     repositories.StageRepository
	stageTeamRepo repositories.StageTeamRepository
	groupRepo     repositories.GroupRepository
	fixtureRepo   repositories.FixtureRepository
	rankingRepo   repositories.RankingRepository
	notifier      StageNotifier
	logger        *slog.Logger
}

func NewStageService(
	transactor repositories.Transactor,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	groupRepo repositories.GroupRepository,
	fixtureRepo repositories.FixtureRepository,
	rankingRepo repositories.RankingRepository,
	notifier StageNotifier,
	logger *slog.Logger,
) StageService {
	return &stageService{
		transactor:    transactor,
		stageRepo:     stageRepo,
		stageTeamRepo: stageTeamRepo,
		groupRepo:     groupRepo,
		fixtureRepo:   fixtureRepo,
		rankingRepo:   rankingRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *stageService) Start(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if !isValidStageTransition(stage.Status, models.StageStatusActive) {
		return nil, fmt.Errorf("%w: %s -> active", ErrStageInvalidStatusTransition, stage.Status)
	}
	teamIDs, err := s.stageTeamRepo.ListTeamIDsByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for stage %d: %w", stageID, err)
	}
	if len(teamIDs) == 0 {
		return nil, ErrStageRequiresTeams
	}
	return s.transition(ctx, stage, models.StageStatusActive, EventStageStarted)
}

// Complete does not hard-block on unfinished fixtures: whether a stage may
// close with open fixtures is caller policy.
func (s *stageService) Complete(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if !isValidStageTransition(stage.Status, models.StageStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> completed", ErrStageInvalidStatusTransition, stage.Status)
	}
	return s.transition(ctx, stage, models.StageStatusCompleted, EventStageCompleted)
}

func (s *stageService) Cancel(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if !isValidStageTransition(stage.Status, models.StageStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> cancelled", ErrStageInvalidStatusTransition, stage.Status)
	}
	return s.transition(ctx, stage, models.StageStatusCancelled, EventStageCancelled)
}

func (s *stageService) transition(ctx context.Context, stage *models.Stage, next models.StageStatus, event string) (*models.Stage, error) {
	if err := s.stageRepo.UpdateStatus(ctx, nil, stage.ID, next); err != nil {
		return nil, fmt.Errorf("failed to update stage %d status: %w", stage.ID, err)
	}
	stage.Status = next
	s.logger.InfoContext(ctx, "stage status changed",
		slog.Int("stage_id", stage.ID), slog.String("status", string(next)))
	s.broadcast(stage.ID, event, map[string]interface{}{"stage_id": stage.ID, "status": next})
	return stage, nil
}

func (s *stageService) GenerateFixtures(ctx context.Context, stageID int, mode GenerationMode) ([]*models.Fixture, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeInitial, ModeRegenerate:
		if stage.Status != models.StageStatusPending {
			return nil, fmt.Errorf("%w: stage %d is %s", ErrStageNotPending, stageID, stage.Status)
		}
	case ModeNextRound:
		if stage.Type != models.StageTypeSwiss {
			return nil, fmt.Errorf("%w: stage %d is %s", ErrNextRoundRequiresSwiss, stageID, stage.Type)
		}
		if stage.Status != models.StageStatusActive {
			return nil, fmt.Errorf("%w: stage %d is %s", ErrStageNotActive, stageID, stage.Status)
		}
	default:
		return nil, fmt.Errorf("%w: unknown generation mode %q", ErrValidationFailed, mode)
	}

	generator, err := fixtures.ForStageType(stage.Type)
	if err != nil {
		return nil, translateGeneratorError(err)
	}

	teams, err := s.stageTeamRepo.ListByStage(ctx, nil, stageID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for stage %d: %w", stageID, err)
	}
	groups, err := s.groupRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for stage %d: %w", stageID, err)
	}

	params := fixtures.GenerateParams{
		Stage:   stage,
		Teams:   teams,
		Groups:  groups,
		Kickoff: time.Now(),
	}

	existingCount, err := s.fixtureRepo.CountByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to count fixtures for stage %d: %w", stageID, err)
	}
	switch mode {
	case ModeInitial:
		if existingCount > 0 {
			return nil, fmt.Errorf("%w: stage %d has %d fixtures", ErrFixturesAlreadyGenerated, stageID, existingCount)
		}
	case ModeNextRound:
		prior, listErr := s.fixtureRepo.ListByStage(ctx, nil, stageID)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list prior fixtures for stage %d: %w", stageID, listErr)
		}
		rankings, rankErr := s.rankingRepo.ListByStage(ctx, nil, stageID)
		if rankErr != nil {
			return nil, fmt.Errorf("failed to list rankings for stage %d: %w", stageID, rankErr)
		}
		params.PriorFixtures = prior
		params.Rankings = rankings
	}

	generated, err := generator.Generate(ctx, params)
	if err != nil {
		return nil, translateGeneratorError(err)
	}

	// Delete-then-insert runs as one transaction so regeneration can never
	// leave a partially replaced fixture set behind.
	err = s.transactor.InTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if mode == ModeRegenerate {
			if delErr := s.fixtureRepo.DeleteByStage(ctx, exec, stageID); delErr != nil {
				return fmt.Errorf("failed to delete previous fixtures: %w", delErr)
			}
		}
		if insErr := s.fixtureRepo.CreateBatch(ctx, exec, generated); insErr != nil {
			return insErr
		}
		if stage.Type == models.StageTypeKnockout {
			return s.linkKnockoutAdvancement(ctx, exec, stage, generated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixtures generated",
		slog.Int("stage_id", stageID), slog.String("mode", string(mode)),
		slog.String("generator", generator.Name()), slog.Int("count", len(generated)))
	s.broadcast(stageID, EventFixturesGenerated, map[string]interface{}{
		"stage_id": stageID, "count": len(generated),
	})
	return generated, nil
}

// linkKnockoutAdvancement resolves bracket UIDs to the database ids created
// in this transaction and wires each fixture to the one its winner feeds.
// When a third-place play-off exists the semi-finals also carry a loser
// link into it. Two-leg brackets are left entirely unlinked: the aggregate
// winner across legs is the caller's decision, not single-fixture
// advancement (see fixtures.KnockoutGenerator).
func (s *stageService) linkKnockoutAdvancement(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage, generated []*models.Fixture) error {
	if stage.Settings.Knockout != nil && stage.Settings.Knockout.Legs == 2 {
		return nil
	}

	idByUID := make(map[string]int, len(generated))
	finalRound := 0
	for _, f := range generated {
		idByUID[f.BracketUID] = f.ID
		if f.Round > finalRound {
			finalRound = f.Round
		}
	}
	// The third-place fixture, when generated, sits next to the final as
	// match order 2 of the last round.
	var thirdPlaceID *int
	for _, f := range generated {
		if f.Round == finalRound && f.MatchOrder == 2 {
			id := f.ID
			thirdPlaceID = &id
		}
	}

	for _, f := range generated {
		parentUID, slot := fixtures.KnockoutParentUID(stage.ID, f.Round, f.MatchOrder)
		if parentID, ok := idByUID[parentUID]; ok {
			nextID, winnerSlot := parentID, slot
			f.NextFixtureID = &nextID
			f.WinnerToSlot = &winnerSlot
		}
		if thirdPlaceID != nil && f.Round == finalRound-1 {
			loserSlot := f.MatchOrder
			f.LoserNextFixtureID = thirdPlaceID
			f.LoserToSlot = &loserSlot
		}
		if f.NextFixtureID == nil && f.LoserNextFixtureID == nil {
			continue // final or third-place play-off
		}
		if err := s.fixtureRepo.UpdateAdvancement(ctx, exec, f.ID, f.NextFixtureID, f.WinnerToSlot, f.LoserNextFixtureID, f.LoserToSlot); err != nil {
			return fmt.Errorf("failed to link fixture %s: %w", f.BracketUID, err)
		}
	}
	return nil
}

func (s *stageService) ComputeRankings(ctx context.Context, stageID int) ([]*models.Ranking, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Status != models.StageStatusActive && stage.Status != models.StageStatusCompleted {
		return nil, fmt.Errorf("%w: stage %d is %s", ErrRankingsNotAvailable, stageID, stage.Status)
	}
	if stage.Type == models.StageTypeKingOfHill {
		return nil, fmt.Errorf("%w: king_of_hill stages rank through the session queue", ErrUnsupportedStageType)
	}

	teams, err := s.stageTeamRepo.ListByStage(ctx, nil, stageID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for stage %d: %w", stageID, err)
	}
	fixtureRows, err := s.fixtureRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures for stage %d: %w", stageID, err)
	}

	rows, err := standings.Compute(stage, teams, fixtureRows)
	if err != nil {
		if errors.Is(err, standings.ErrNoTeamsInStage) {
			return nil, fmt.Errorf("%w: stage %d", ErrNoTeamsInStage, stageID)
		}
		return nil, err
	}

	// Full replace inside one transaction: rankings are a derived cache and
	// readers must never observe a partially rewritten set.
	err = s.transactor.InTransaction(ctx, func(exec repositories.SQLExecutor) error {
		return s.rankingRepo.ReplaceForStage(ctx, exec, stageID, rows)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(stageID, EventRankingsUpdated, map[string]interface{}{
		"stage_id": stageID, "rows": len(rows),
	})
	return rows, nil
}

func (s *stageService) ListFixtures(ctx context.Context, stageID int) ([]*models.Fixture, error) {
	if _, err := s.getStage(ctx, stageID); err != nil {
		return nil, err
	}
	return s.fixtureRepo.ListByStage(ctx, nil, stageID)
}

func (s *stageService) ListRankings(ctx context.Context, stageID int) ([]*models.Ranking, error) {
	if _, err := s.getStage(ctx, stageID); err != nil {
		return nil, err
	}
	return s.rankingRepo.ListByStage(ctx, nil, stageID)
}

// ListGroupRankings narrows the standings to a single group of a grouped
// stage.
func (s *stageService) ListGroupRankings(ctx context.Context, stageID, groupID int) ([]*models.Ranking, error) {
	if _, err := s.getStage(ctx, stageID); err != nil {
		return nil, err
	}
	return s.rankingRepo.ListByStageAndGroup(ctx, nil, stageID, groupID)
}

// GetStageDetail assembles the stage with its teams, groups, fixtures and
// rankings through discrete repository calls; nothing is lazy-loaded.
func (s *stageService) GetStageDetail(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.stageTeamRepo.ListByStage(gCtx, nil, stageID, true)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		stage.Teams = stageTeamsToValues(teams)
		return nil
	})
	g.Go(func() error {
		groups, err := s.groupRepo.ListByStage(gCtx, nil, stageID)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		stage.Groups = groupsToValues(groups)
		return nil
	})
	g.Go(func() error {
		fixtureRows, err := s.fixtureRepo.ListByStage(gCtx, nil, stageID)
		if err != nil {
			return fmt.Errorf("failed to list fixtures: %w", err)
		}
		stage.Fixtures = fixturesToValues(fixtureRows)
		return nil
	})
	g.Go(func() error {
		rankings, err := s.rankingRepo.ListByStage(gCtx, nil, stageID)
		if err != nil {
			return fmt.Errorf("failed to list rankings: %w", err)
		}
		stage.Rankings = rankingsToValues(rankings)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble stage %d detail: %w", stageID, err)
	}
	return stage, nil
}

func (s *stageService) getStage(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	return stage, nil
}

func (s *stageService) broadcast(stageID int, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastStageEvent(stageID, event, payload)
	}
}

func translateGeneratorError(err error) error {
	switch {
	case errors.Is(err, fixtures.ErrInsufficientTeams):
		return fmt.Errorf("%w: %v", ErrInsufficientTeams, err)
	case errors.Is(err, fixtures.ErrInvalidGroupConfiguration):
		return fmt.Errorf("%w: %v", ErrInvalidGroupConfiguration, err)
	case errors.Is(err, fixtures.ErrUnsupportedStageType):
		return fmt.Errorf("%w: %v", ErrUnsupportedStageType, err)
	default:
		return err
	}
}
