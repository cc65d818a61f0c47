package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/promotion"
	"github.com/myckhel/turfHub-sub002/repositories"
)

const EventPromotionExecuted = "PROMOTION_EXECUTED"

type PromotionService interface {
	Configure(ctx context.Context, promo *models.StagePromotion) error
	GetConfiguration(ctx context.Context, stageID int) (*models.StagePromotion, error)
	RemoveConfiguration(ctx context.Context, stageID int) error

	// Simulate previews the qualifying teams without writing anything.
	Simulate(ctx context.Context, stageID int) (*models.PromotionPreview, error)
	// Execute runs the same selection and applies it: the qualifying teams
	// are inserted into the next stage and one audit row is appended, all in
	// one transaction.
	Execute(ctx context.Context, stageID int, triggeredBy *int) (*models.PromotionPreview, error)

	History(ctx context.Context, stageID int) ([]*models.PromotionAudit, error)
}

type promotionService struct {
	transactor    repositories.Transactor
	registry      *promotion.Registry
	stageRepo     repositories.StageRepository
	stageTeamRepo repositories.StageTeamRepository
	groupRepo     repositories.GroupRepository
	fixtureRepo   repositories.FixtureRepository
	rankingRepo   repositories.RankingRepository
	promoRepo     repositories.StagePromotionRepository
	auditRepo     repositories.PromotionAuditRepository
	teamRepo      repositories.TeamRepository
	notifier      StageNotifier
	logger        *slog.Logger
}

func NewPromotionService(
	transactor repositories.Transactor,
	registry *promotion.Registry,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	groupRepo repositories.GroupRepository,
	fixtureRepo repositories.FixtureRepository,
	rankingRepo repositories.RankingRepository,
	promoRepo repositories.StagePromotionRepository,
	auditRepo repositories.PromotionAuditRepository,
	teamRepo repositories.TeamRepository,
	notifier StageNotifier,
	logger *slog.Logger,
) PromotionService {
	return &promotionService{
		transactor:    transactor,
		registry:      registry,
		stageRepo:     stageRepo,
		stageTeamRepo: stageTeamRepo,
		groupRepo:     groupRepo,
		fixtureRepo:   fixtureRepo,
		rankingRepo:   rankingRepo,
		promoRepo:     promoRepo,
		auditRepo:     auditRepo,
		teamRepo:      teamRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *promotionService) Configure(ctx context.Context, promo *models.StagePromotion) error {
	if _, err := s.stageRepo.GetByID(ctx, nil, promo.StageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to load stage %d: %w", promo.StageID, err)
	}
	if _, err := s.stageRepo.GetByID(ctx, nil, promo.NextStageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return fmt.Errorf("%w: next stage %d", ErrStageNotFound, promo.NextStageID)
		}
		return fmt.Errorf("failed to load next stage %d: %w", promo.NextStageID, err)
	}
	promo.RuleType = promo.Rule.Type
	if err := s.promoRepo.Create(ctx, nil, promo); err != nil {
		if errors.Is(err, repositories.ErrStagePromotionConflict) {
			return ErrStagePromotionConflict
		}
		return err
	}
	return nil
}

func (s *promotionService) GetConfiguration(ctx context.Context, stageID int) (*models.StagePromotion, error) {
	promo, err := s.promoRepo.GetByStage(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStagePromotionNotFound) {
			return nil, fmt.Errorf("%w: stage %d", ErrNoPromotionConfigured, stageID)
		}
		return nil, err
	}
	return promo, nil
}

func (s *promotionService) RemoveConfiguration(ctx context.Context, stageID int) error {
	promo, err := s.GetConfiguration(ctx, stageID)
	if err != nil {
		return err
	}
	return s.promoRepo.Delete(ctx, nil, promo.ID)
}

func (s *promotionService) Simulate(ctx context.Context, stageID int) (*models.PromotionPreview, error) {
	_, promo, teamIDs, err := s.selectQualifiers(ctx, stageID)
	if err != nil {
		return nil, err
	}
	return s.buildPreview(ctx, promo, teamIDs)
}

func (s *promotionService) Execute(ctx context.Context, stageID int, triggeredBy *int) (*models.PromotionPreview, error) {
	stage, promo, teamIDs, err := s.selectQualifiers(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Status != models.StageStatusCompleted {
		return nil, fmt.Errorf("%w: stage %d is %s", ErrStageNotCompleted, stageID, stage.Status)
	}

	preview, err := s.buildPreview(ctx, promo, teamIDs)
	if err != nil {
		return nil, err
	}
	resultJSON, err := json.Marshal(preview)
	if err != nil {
		return nil, fmt.Errorf("failed to encode promotion result: %w", err)
	}

	// Team inserts and the audit row commit atomically. Teams already in the
	// next stage are skipped so re-running an execution is harmless, but the
	// audit row is appended unconditionally, even for an empty selection.
	err = s.transactor.InTransaction(ctx, func(exec repositories.SQLExecutor) error {
		existingIDs, txErr := s.stageTeamRepo.ListTeamIDsByStage(ctx, exec, promo.NextStageID)
		if txErr != nil {
			return fmt.Errorf("failed to list next stage teams: %w", txErr)
		}
		existing := make(map[int]bool, len(existingIDs))
		for _, id := range existingIDs {
			existing[id] = true
		}

		seed := len(existingIDs)
		for _, teamID := range teamIDs {
			if existing[teamID] {
				continue
			}
			seed++
			st := &models.StageTeam{StageID: promo.NextStageID, TeamID: teamID, Seed: seed}
			if txErr := s.stageTeamRepo.Create(ctx, exec, st); txErr != nil {
				return fmt.Errorf("failed to insert team %d into stage %d: %w", teamID, promo.NextStageID, txErr)
			}
		}

		audit := &models.PromotionAudit{
			StageID:     stageID,
			TriggeredBy: triggeredBy,
			Simulated:   false,
			Result:      string(resultJSON),
		}
		return s.auditRepo.Append(ctx, exec, audit)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "promotion executed",
		slog.Int("stage_id", stageID), slog.Int("next_stage_id", promo.NextStageID),
		slog.Int("promoted", len(teamIDs)))
	s.broadcast(stageID, EventPromotionExecuted, preview)
	return preview, nil
}

func (s *promotionService) History(ctx context.Context, stageID int) ([]*models.PromotionAudit, error) {
	return s.auditRepo.ListByStage(ctx, nil, stageID)
}

// selectQualifiers loads the stage context and runs the shared selection.
// Both Simulate and Execute go through here so they can never disagree on
// who qualifies.
func (s *promotionService) selectQualifiers(ctx context.Context, stageID int) (*models.Stage, *models.StagePromotion, []int, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, nil, nil, ErrStageNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	promo, err := s.GetConfiguration(ctx, stageID)
	if err != nil {
		return nil, nil, nil, err
	}

	rankings, err := s.rankingRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list rankings for stage %d: %w", stageID, err)
	}
	fixtures, err := s.fixtureRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list fixtures for stage %d: %w", stageID, err)
	}
	groups, err := s.groupRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list groups for stage %d: %w", stageID, err)
	}

	teamIDs, err := promotion.Select(ctx, s.registry, promotion.SelectionInput{
		Stage:    stage,
		Rule:     promo.Rule,
		Rankings: rankings,
		Fixtures: fixtures,
		Groups:   groups,
	})
	if err != nil {
		return nil, nil, nil, translatePromotionError(err)
	}
	return stage, promo, teamIDs, nil
}

func (s *promotionService) buildPreview(ctx context.Context, promo *models.StagePromotion, teamIDs []int) (*models.PromotionPreview, error) {
	preview := &models.PromotionPreview{
		StageID:     promo.StageID,
		NextStageID: promo.NextStageID,
		RuleType:    promo.RuleType,
		TeamIDs:     teamIDs,
	}
	if len(teamIDs) == 0 {
		return preview, nil
	}
	teams, err := s.teamRepo.ListByIDs(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load promoted teams: %w", err)
	}
	preview.Teams = make([]models.Team, 0, len(teams))
	for _, team := range teams {
		preview.Teams = append(preview.Teams, *team)
	}
	return preview, nil
}

func (s *promotionService) broadcast(stageID int, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastStageEvent(stageID, event, payload)
	}
}

func translatePromotionError(err error) error {
	switch {
	case errors.Is(err, promotion.ErrAmbiguousRankingScope):
		return fmt.Errorf("%w: %v", ErrAmbiguousRankingScope, err)
	case errors.Is(err, promotion.ErrIncompleteKnockout):
		return fmt.Errorf("%w: %v", ErrCannotPromoteIncompleteKnockout, err)
	case errors.Is(err, promotion.ErrTieUnresolved):
		return fmt.Errorf("%w: %v", ErrPromotionTieUnresolved, err)
	case errors.Is(err, promotion.ErrHandlerNotRegistered):
		return fmt.Errorf("%w: %v", ErrPromotionHandlerMissing, err)
	default:
		return err
	}
}
