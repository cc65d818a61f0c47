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
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupStageInvalid = errors.New("group stage conflict or invalid")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Group, error)
	DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (stage_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query, group.StageID, group.Name, group.Position).Scan(&group.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrGroupStageInvalid
		}
		return fmt.Errorf("failed to create group %q for stage %d: %w", group.Name, group.StageID, err)
	}
	return nil
}

func (r *postgresGroupRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Group, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, stage_id, name, position FROM groups WHERE stage_id = $1 ORDER BY position ASC, id ASC`
	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.StageID, &g.Name, &g.Position); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM groups WHERE stage_id = $1`, stageID)
	return err
}
