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
	ErrStageTeamNotFound    = errors.New("stage team assignment not found")
	ErrStageTeamConflict    = errors.New("team is already assigned to this stage")
	ErrStageTeamStageMissed = errors.New("stage team stage conflict or invalid")
	ErrStageTeamTeamMissed  = errors.New("stage team team conflict or invalid")
)

type StageTeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, st *models.StageTeam) error
	CreateBatch(ctx context.Context, exec SQLExecutor, entries []*models.StageTeam) error
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int, includeTeam bool) ([]*models.StageTeam, error)
	ListTeamIDsByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]int, error)
	UpdateGroup(ctx context.Context, exec SQLExecutor, id int, groupID *int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error
}

type postgresStageTeamRepository struct {
	db *sql.DB
}

func NewPostgresStageTeamRepository(db *sql.DB) StageTeamRepository {
	return &postgresStageTeamRepository{db: db}
}

func (r *postgresStageTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageTeamRepository) Create(ctx context.Context, exec SQLExecutor, st *models.StageTeam) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stage_teams (stage_id, team_id, seed, group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, st.StageID, st.TeamID, st.Seed, st.GroupID).
		Scan(&st.ID, &st.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation on (stage_id, team_id)
				return ErrStageTeamConflict
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "stage_teams_stage_id_fkey":
					return ErrStageTeamStageMissed
				case "stage_teams_team_id_fkey":
					return ErrStageTeamTeamMissed
				}
			}
		}
		return fmt.Errorf("failed to assign team %d to stage %d: %w", st.TeamID, st.StageID, err)
	}
	return nil
}

func (r *postgresStageTeamRepository) CreateBatch(ctx context.Context, exec SQLExecutor, entries []*models.StageTeam) error {
	for _, entry := range entries {
		if err := r.Create(ctx, exec, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresStageTeamRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int, includeTeam bool) ([]*models.StageTeam, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT st.id, st.stage_id, st.team_id, st.seed, st.group_id, st.created_at
		FROM stage_teams st
		WHERE st.stage_id = $1
		ORDER BY st.seed ASC, st.team_id ASC`
	if includeTeam {
		query = `
		SELECT st.id, st.stage_id, st.team_id, st.seed, st.group_id, st.created_at,
		       t.id, t.name, t.captain_id, t.created_at, t.logo_key
		FROM stage_teams st
		JOIN teams t ON t.id = st.team_id
		WHERE st.stage_id = $1
		ORDER BY st.seed ASC, st.team_id ASC`
	}

	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.StageTeam, 0)
	for rows.Next() {
		var st models.StageTeam
		if includeTeam {
			var team models.Team
			if err := rows.Scan(
				&st.ID, &st.StageID, &st.TeamID, &st.Seed, &st.GroupID, &st.CreatedAt,
				&team.ID, &team.Name, &team.CaptainID, &team.CreatedAt, &team.LogoKey,
			); err != nil {
				return nil, err
			}
			st.Team = &team
		} else {
			if err := rows.Scan(&st.ID, &st.StageID, &st.TeamID, &st.Seed, &st.GroupID, &st.CreatedAt); err != nil {
				return nil, err
			}
		}
		entries = append(entries, &st)
	}
	return entries, rows.Err()
}

func (r *postgresStageTeamRepository) ListTeamIDsByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `SELECT team_id FROM stage_teams WHERE stage_id = $1`, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresStageTeamRepository) UpdateGroup(ctx context.Context, exec SQLExecutor, id int, groupID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE stage_teams SET group_id = $1 WHERE id = $2`, groupID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageTeamNotFound)
}

func (r *postgresStageTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM stage_teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageTeamNotFound)
}

func (r *postgresStageTeamRepository) DeleteByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM stage_teams WHERE stage_id = $1`, stageID)
	return err
}
