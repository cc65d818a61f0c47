package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/myckhel/turfHub-sub002/models"
)

var ErrRankingNotFound = errors.New("ranking not found")

type RankingRepository interface {
	// ReplaceForStage deletes every ranking row of the stage and inserts the
	// new set. Callers must pass a transaction executor so no reader observes
	// a half-replaced table.
	ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, rows []*models.Ranking) error
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Ranking, error)
	ListByStageAndGroup(ctx context.Context, exec SQLExecutor, stageID, groupID int) ([]*models.Ranking, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, rows []*models.Ranking) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM rankings WHERE stage_id = $1`, stageID); err != nil {
		return fmt.Errorf("failed to clear rankings for stage %d: %w", stageID, err)
	}
	query := `
		INSERT INTO rankings (stage_id, group_id, team_id, points, played, wins, draws, losses,
			goals_for, goals_against, goal_difference, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	for _, row := range rows {
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			row.StageID, row.GroupID, row.TeamID, row.Points, row.Played, row.Wins, row.Draws,
			row.Losses, row.GoalsFor, row.GoalsAgainst, row.GoalDifference, row.Rank, row.UpdatedAt,
		).Scan(&row.ID)
		if err != nil {
			return fmt.Errorf("failed to insert ranking for team %d in stage %d: %w", row.TeamID, stageID, err)
		}
	}
	return nil
}

func (r *postgresRankingRepository) scanRanking(rowScanner interface{ Scan(...interface{}) error }) (*models.Ranking, error) {
	var row models.Ranking
	err := rowScanner.Scan(
		&row.ID, &row.StageID, &row.GroupID, &row.TeamID, &row.Points, &row.Played, &row.Wins,
		&row.Draws, &row.Losses, &row.GoalsFor, &row.GoalsAgainst, &row.GoalDifference, &row.Rank,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, err
	}
	return &row, nil
}

const rankingColumns = `id, stage_id, group_id, team_id, points, played, wins, draws, losses,
	goals_for, goals_against, goal_difference, rank, updated_at`

func (r *postgresRankingRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + rankingColumns + ` FROM rankings WHERE stage_id = $1
		ORDER BY group_id ASC NULLS FIRST, rank ASC, team_id ASC`
	return r.list(ctx, executor, query, stageID)
}

func (r *postgresRankingRepository) ListByStageAndGroup(ctx context.Context, exec SQLExecutor, stageID, groupID int) ([]*models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + rankingColumns + ` FROM rankings WHERE stage_id = $1 AND group_id = $2
		ORDER BY rank ASC, team_id ASC`
	return r.list(ctx, executor, query, stageID, groupID)
}

func (r *postgresRankingRepository) list(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]*models.Ranking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]*models.Ranking, 0)
	for rows.Next() {
		row, errScan := r.scanRanking(rows)
		if errScan != nil {
			return nil, errScan
		}
		rankings = append(rankings, row)
	}
	return rankings, rows.Err()
}
