package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/repositories"
)

const (
	EventFixtureCreated = "FIXTURE_CREATED"
	EventFixtureResult  = "FIXTURE_RESULT"
	EventFixtureStatus  = "FIXTURE_STATUS"
	EventWinnerAdvanced = "WINNER_ADVANCED"
	EventLoserRouted    = "LOSER_ROUTED"
)

// CreateFixtureInput describes a manually scheduled pairing. Custom stages
// have no generator, so all of their fixtures enter through this path; it is
// open to any stage type while the stage is still pending.
type CreateFixtureInput struct {
	TeamAID  int        `json:"team_a_id"`
	TeamBID  int        `json:"team_b_id"`
	GroupID  *int       `json:"group_id,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	Duration int        `json:"duration,omitempty"`
}

// SubmitResultInput carries a final score for a fixture. WinnerTeamID is
// only required when the scores are level on a knockout stage, where the
// caller must say who went through (shootout, coin toss, forfeit).
type SubmitResultInput struct {
	ScoreA       int                 `json:"score_a"`
	ScoreB       int                 `json:"score_b"`
	WinnerTeamID *int                `json:"winning_team_id,omitempty"`
	Detail       *models.ScoreDetail `json:"detail,omitempty"`
}

type FixtureService interface {
	Create(ctx context.Context, stageID int, input CreateFixtureInput) (*models.Fixture, error)
	GetByID(ctx context.Context, fixtureID int) (*models.Fixture, error)
	SubmitResult(ctx context.Context, fixtureID int, input SubmitResultInput) (*models.Fixture, error)
	UpdateStatus(ctx context.Context, fixtureID int, status models.FixtureStatus) (*models.Fixture, error)
}

type fixtureService struct {
	transactor    repositories.Transactor
	fixtureRepo   repositories.FixtureRepository
	stageRepo     repositories.StageRepository
	stageTeamRepo repositories.StageTeamRepository
	notifier      StageNotifier
	logger        *slog.Logger
}

func NewFixtureService(
	transactor repositories.Transactor,
	fixtureRepo repositories.FixtureRepository,
	stageRepo repositories.StageRepository,
	stageTeamRepo repositories.StageTeamRepository,
	notifier StageNotifier,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		transactor:    transactor,
		fixtureRepo:   fixtureRepo,
		stageRepo:     stageRepo,
		stageTeamRepo: stageTeamRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

func (s *fixtureService) Create(ctx context.Context, stageID int, input CreateFixtureInput) (*models.Fixture, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.Status != models.StageStatusPending {
		return nil, fmt.Errorf("%w: fixtures can only be added while pending", ErrStageNotPending)
	}
	if input.TeamAID == input.TeamBID {
		return nil, fmt.Errorf("%w: a fixture needs two distinct teams", ErrValidationFailed)
	}

	assignedIDs, err := s.stageTeamRepo.ListTeamIDsByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for stage %d: %w", stageID, err)
	}
	assigned := make(map[int]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}
	for _, teamID := range []int{input.TeamAID, input.TeamBID} {
		if !assigned[teamID] {
			return nil, fmt.Errorf("%w: team %d is not assigned to stage %d", ErrTeamNotFound, teamID, stageID)
		}
	}

	count, err := s.fixtureRepo.CountByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to count fixtures for stage %d: %w", stageID, err)
	}

	startsAt := time.Now()
	if input.StartsAt != nil {
		startsAt = *input.StartsAt
	}
	duration := input.Duration
	if duration <= 0 {
		duration = stage.Settings.MatchDuration
	}

	teamA, teamB := input.TeamAID, input.TeamBID
	fixture := &models.Fixture{
		StageID:    stageID,
		GroupID:    input.GroupID,
		TeamAID:    &teamA,
		TeamBID:    &teamB,
		StartsAt:   startsAt,
		Duration:   duration,
		Status:     models.FixtureStatusUpcoming,
		Round:      1,
		MatchOrder: count + 1,
	}
	if err := s.fixtureRepo.Create(ctx, nil, fixture); err != nil {
		return nil, fmt.Errorf("failed to create fixture for stage %d: %w", stageID, err)
	}

	s.logger.InfoContext(ctx, "fixture created",
		slog.Int("fixture_id", fixture.ID), slog.Int("stage_id", stageID),
		slog.Int("team_a_id", teamA), slog.Int("team_b_id", teamB))
	s.broadcast(stageID, EventFixtureCreated, fixture)
	return fixture, nil
}

func (s *fixtureService) GetByID(ctx context.Context, fixtureID int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, nil, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to load fixture %d: %w", fixtureID, err)
	}
	return fixture, nil
}

func (s *fixtureService) SubmitResult(ctx context.Context, fixtureID int, input SubmitResultInput) (*models.Fixture, error) {
	fixture, err := s.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if fixture.TeamAID == nil || fixture.TeamBID == nil {
		return nil, fmt.Errorf("%w: fixture %d", ErrFixtureTeamsUnset, fixtureID)
	}
	if fixture.Status == models.FixtureStatusCancelled {
		return nil, fmt.Errorf("%w: fixture %d is cancelled", ErrValidationFailed, fixtureID)
	}
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, fmt.Errorf("%w: scores must be non-negative", ErrValidationFailed)
	}

	stage, err := s.stageRepo.GetByID(ctx, nil, fixture.StageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage %d: %w", fixture.StageID, err)
	}
	if stage.Status != models.StageStatusActive {
		return nil, fmt.Errorf("%w: stage %d is %s", ErrStageNotActive, stage.ID, stage.Status)
	}

	winner, err := resolveWinner(fixture, stage.Type, input)
	if err != nil {
		return nil, err
	}

	scoreA, scoreB := input.ScoreA, input.ScoreB
	fixture.ScoreA = &scoreA
	fixture.ScoreB = &scoreB
	fixture.WinnerTeamID = winner
	fixture.Status = models.FixtureStatusCompleted
	if input.Detail != nil {
		raw, marshalErr := json.Marshal(input.Detail)
		if marshalErr != nil {
			return nil, fmt.Errorf("%w: invalid score detail: %v", ErrValidationFailed, marshalErr)
		}
		encoded := string(raw)
		fixture.ScoreDetails = &encoded
	}

	// The result write and both bracket placements must land together or not
	// at all.
	err = s.transactor.InTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if updErr := s.fixtureRepo.UpdateResult(ctx, exec, fixture); updErr != nil {
			return updErr
		}
		if advErr := s.advanceWinner(ctx, exec, fixture); advErr != nil {
			return advErr
		}
		return s.advanceLoser(ctx, exec, fixture)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixture result recorded",
		slog.Int("fixture_id", fixture.ID), slog.Int("stage_id", fixture.StageID),
		slog.Int("score_a", scoreA), slog.Int("score_b", scoreB))
	s.broadcast(fixture.StageID, EventFixtureResult, fixture)
	return fixture, nil
}

// resolveWinner derives the winner from the scores. Draws are a valid final
// result outside knockout play; in a knockout the caller has to break them.
func resolveWinner(fixture *models.Fixture, stageType models.StageType, input SubmitResultInput) (*int, error) {
	switch {
	case input.ScoreA > input.ScoreB:
		return fixture.TeamAID, nil
	case input.ScoreB > input.ScoreA:
		return fixture.TeamBID, nil
	}
	if input.WinnerTeamID != nil {
		if !fixture.HasTeam(*input.WinnerTeamID) {
			return nil, fmt.Errorf("%w: team %d", ErrWinnerNotInFixture, *input.WinnerTeamID)
		}
		return input.WinnerTeamID, nil
	}
	if stageType == models.StageTypeKnockout {
		return nil, fmt.Errorf("%w: a drawn knockout fixture needs an explicit winner", ErrValidationFailed)
	}
	return nil, nil
}

// advanceWinner copies the winner into the linked slot of the next bracket
// fixture, if any.
func (s *fixtureService) advanceWinner(ctx context.Context, exec repositories.SQLExecutor, fixture *models.Fixture) error {
	if fixture.NextFixtureID == nil || fixture.WinnerToSlot == nil || fixture.WinnerTeamID == nil {
		return nil
	}
	if err := s.placeTeam(ctx, exec, *fixture.NextFixtureID, *fixture.WinnerToSlot, *fixture.WinnerTeamID); err != nil {
		return fmt.Errorf("failed to advance winner into fixture %d: %w", *fixture.NextFixtureID, err)
	}
	s.logger.InfoContext(ctx, "winner advanced",
		slog.Int("from_fixture", fixture.ID), slog.Int("to_fixture", *fixture.NextFixtureID),
		slog.Int("slot", *fixture.WinnerToSlot), slog.Int("team_id", *fixture.WinnerTeamID))
	s.broadcast(fixture.StageID, EventWinnerAdvanced, map[string]interface{}{
		"fixture_id": *fixture.NextFixtureID, "slot": *fixture.WinnerToSlot, "team_id": *fixture.WinnerTeamID,
	})
	return nil
}

// advanceLoser mirrors advanceWinner along the loser link, which carries the
// semi-final losers into the third-place play-off.
func (s *fixtureService) advanceLoser(ctx context.Context, exec repositories.SQLExecutor, fixture *models.Fixture) error {
	loser := fixture.LoserTeamID()
	if fixture.LoserNextFixtureID == nil || fixture.LoserToSlot == nil || loser == nil {
		return nil
	}
	if err := s.placeTeam(ctx, exec, *fixture.LoserNextFixtureID, *fixture.LoserToSlot, *loser); err != nil {
		return fmt.Errorf("failed to route loser into fixture %d: %w", *fixture.LoserNextFixtureID, err)
	}
	s.logger.InfoContext(ctx, "loser routed",
		slog.Int("from_fixture", fixture.ID), slog.Int("to_fixture", *fixture.LoserNextFixtureID),
		slog.Int("slot", *fixture.LoserToSlot), slog.Int("team_id", *loser))
	s.broadcast(fixture.StageID, EventLoserRouted, map[string]interface{}{
		"fixture_id": *fixture.LoserNextFixtureID, "slot": *fixture.LoserToSlot, "team_id": *loser,
	})
	return nil
}

func (s *fixtureService) placeTeam(ctx context.Context, exec repositories.SQLExecutor, fixtureID, slot, teamID int) error {
	target, err := s.fixtureRepo.GetByID(ctx, exec, fixtureID)
	if err != nil {
		return err
	}
	teamAID, teamBID := target.TeamAID, target.TeamBID
	team := teamID
	if slot == 1 {
		teamAID = &team
	} else {
		teamBID = &team
	}
	return s.fixtureRepo.UpdateTeams(ctx, exec, target.ID, teamAID, teamBID)
}

// UpdateStatus handles the non-result transitions: kick-off, postponement
// and cancellation. Completion only ever happens through SubmitResult.
func (s *fixtureService) UpdateStatus(ctx context.Context, fixtureID int, status models.FixtureStatus) (*models.Fixture, error) {
	switch status {
	case models.FixtureStatusUpcoming, models.FixtureStatusInProgress,
		models.FixtureStatusPostponed, models.FixtureStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: status %q cannot be set directly", ErrValidationFailed, status)
	}
	fixture, err := s.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	if fixture.Status == models.FixtureStatusCompleted {
		return nil, fmt.Errorf("%w: fixture %d already has a result", ErrValidationFailed, fixtureID)
	}
	if err := s.fixtureRepo.UpdateStatus(ctx, nil, fixtureID, status); err != nil {
		return nil, fmt.Errorf("failed to update fixture %d status: %w", fixtureID, err)
	}
	fixture.Status = status
	s.broadcast(fixture.StageID, EventFixtureStatus, map[string]interface{}{
		"fixture_id": fixture.ID, "status": status,
	})
	return fixture, nil
}

func (s *fixtureService) broadcast(stageID int, event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastStageEvent(stageID, event, payload)
	}
}
