package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation errors: bad or missing input.
	ErrInsufficientTeams         = errors.New("not enough teams to generate fixtures")
	ErrInvalidGroupConfiguration = errors.New("invalid group configuration for stage")
	ErrNoTeamsInStage            = errors.New("stage has no assigned teams")
	ErrStageRequiresTeams        = errors.New("stage cannot start without at least one assigned team")
	ErrScoresRequired            = errors.New("both scores are required to complete a fixture")
	ErrFixtureTeamsUnset         = errors.New("fixture teams are not decided yet")
	ErrValidationFailed          = errors.New("validation failed")
	ErrPasswordTooShort          = errors.New("password is too short")
	ErrInvalidCredentials        = errors.New("invalid email or password")

	// State errors: operation invalid for the current stage status.
	ErrStageNotCompleted            = errors.New("stage must be completed before promotion can execute")
	ErrFixturesAlreadyGenerated     = errors.New("fixtures already generated for this stage")
	ErrStageNotPending              = errors.New("fixture generation is only allowed while the stage is pending")
	ErrStageNotActive               = errors.New("operation requires an active stage")
	ErrRankingsNotAvailable         = errors.New("ranking computation requires an active or completed stage")
	ErrStageInvalidStatusTransition = errors.New("invalid stage status transition")
	ErrNextRoundRequiresSwiss       = errors.New("incremental round generation is only supported for swiss stages")

	// Data integrity errors.
	ErrCannotPromoteIncompleteKnockout = errors.New("cannot promote from a knockout with undecided fixtures")
	ErrAmbiguousRankingScope           = errors.New("top_n promotion is ambiguous on a grouped stage")
	ErrPromotionTieUnresolved          = errors.New("promotion blocked by an unresolved ranking tie")
	ErrWinnerNotInFixture              = errors.New("winning team must be one of the fixture's two teams")

	// Not-configured errors.
	ErrNoPromotionConfigured   = errors.New("no promotion is configured for this stage")
	ErrPromotionHandlerMissing = errors.New("custom promotion handler is not registered")
	ErrUnsupportedStageType    = errors.New("stage type is not supported by this operation")

	// Conflicts.
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrStagePromotionConflict = errors.New("stage already has a promotion configured")

	// Entity lookups.
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrFixtureNotFound    = errors.New("fixture not found")
)
