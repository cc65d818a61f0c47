package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/myckhel/turfHub-sub002/models"
)

var (
	ErrFixtureNotFound      = errors.New("fixture not found")
	ErrFixtureStageInvalid  = errors.New("fixture stage conflict or invalid")
	ErrFixtureTeamInvalid   = errors.New("fixture team conflict or invalid")
	ErrFixtureWinnerInvalid = errors.New("fixture winner must be one of the two teams")
)

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	CreateBatch(ctx context.Context, exec SQLExecutor, fixtures []*models.Fixture) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Fixture, error)
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Fixture, error)
	CountByStage(ctx context.Context, exec SQLExecutor, stageID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.FixtureStatus) error
	UpdateTeams(ctx context.Context, exec SQLExecutor, id int, teamAID, teamBID *int) error
	UpdateAdvancement(ctx context.Context, exec SQLExecutor, id int, nextFixtureID, winnerToSlot, loserNextFixtureID, loserToSlot *int) error
	DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

func (r *postgresFixtureRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const fixtureColumns = `id, stage_id, group_id, team_a_id, team_b_id, starts_at, duration, status,
	score_a, score_b, score_details, winning_team_id, round, round_label, match_order, bracket_uid,
	next_fixture_id, winner_to_slot, loser_next_fixture_id, loser_to_slot, created_at`

func (r *postgresFixtureRepository) Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO fixtures (stage_id, group_id, team_a_id, team_b_id, starts_at, duration, status,
			score_a, score_b, score_details, winning_team_id, round, round_label, match_order, bracket_uid,
			next_fixture_id, winner_to_slot, loser_next_fixture_id, loser_to_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		fixture.StageID, fixture.GroupID, fixture.TeamAID, fixture.TeamBID, fixture.StartsAt,
		fixture.Duration, fixture.Status, fixture.ScoreA, fixture.ScoreB, fixture.ScoreDetails,
		fixture.WinnerTeamID, fixture.Round, fixture.RoundLabel, fixture.MatchOrder, fixture.BracketUID,
		fixture.NextFixtureID, fixture.WinnerToSlot, fixture.LoserNextFixtureID, fixture.LoserToSlot,
	).Scan(&fixture.ID, &fixture.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "fixtures_stage_id_fkey":
					return ErrFixtureStageInvalid
				case "fixtures_team_a_id_fkey", "fixtures_team_b_id_fkey":
					return ErrFixtureTeamInvalid
				}
			case "23514": // check_violation
				if pqErr.Constraint == "chk_fixture_winner" {
					return ErrFixtureWinnerInvalid
				}
			}
		}
		return fmt.Errorf("failed to create fixture for stage %d: %w", fixture.StageID, err)
	}
	return nil
}

func (r *postgresFixtureRepository) CreateBatch(ctx context.Context, exec SQLExecutor, fixtures []*models.Fixture) error {
	for _, fixture := range fixtures {
		if err := r.Create(ctx, exec, fixture); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresFixtureRepository) scanFixture(rowScanner interface{ Scan(...interface{}) error }) (*models.Fixture, error) {
	var f models.Fixture
	err := rowScanner.Scan(
		&f.ID, &f.StageID, &f.GroupID, &f.TeamAID, &f.TeamBID, &f.StartsAt, &f.Duration, &f.Status,
		&f.ScoreA, &f.ScoreB, &f.ScoreDetails, &f.WinnerTeamID, &f.Round, &f.RoundLabel, &f.MatchOrder,
		&f.BracketUID, &f.NextFixtureID, &f.WinnerToSlot, &f.LoserNextFixtureID, &f.LoserToSlot, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Fixture, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`
	return r.scanFixture(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresFixtureRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Fixture, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE stage_id = $1 ORDER BY round ASC, match_order ASC, id ASC`
	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		f, errScan := r.scanFixture(rows)
		if errScan != nil {
			return nil, errScan
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

func (r *postgresFixtureRepository) CountByStage(ctx context.Context, exec SQLExecutor, stageID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixtures WHERE stage_id = $1`, stageID).Scan(&count)
	return count, err
}

func (r *postgresFixtureRepository) UpdateResult(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE fixtures SET score_a = $1, score_b = $2, score_details = $3, winning_team_id = $4, status = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		fixture.ScoreA, fixture.ScoreB, fixture.ScoreDetails, fixture.WinnerTeamID, fixture.Status, fixture.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" && pqErr.Constraint == "chk_fixture_winner" {
			return ErrFixtureWinnerInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.FixtureStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE fixtures SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateTeams(ctx context.Context, exec SQLExecutor, id int, teamAID, teamBID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE fixtures SET team_a_id = $1, team_b_id = $2 WHERE id = $3`, teamAID, teamBID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) UpdateAdvancement(ctx context.Context, exec SQLExecutor, id int, nextFixtureID, winnerToSlot, loserNextFixtureID, loserToSlot *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE fixtures SET next_fixture_id = $1, winner_to_slot = $2, loser_next_fixture_id = $3, loser_to_slot = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, nextFixtureID, winnerToSlot, loserNextFixtureID, loserToSlot, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM fixtures WHERE stage_id = $1`, stageID)
	return err
}
