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
	ErrStageNotFound          = errors.New("stage not found")
	ErrStageTournamentInvalid = errors.New("stage tournament conflict or invalid")
	ErrStageOrderConflict     = errors.New("stage order already used within tournament")
)

type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Stage, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Stage, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.StageStatus) error
	UpdateSettings(ctx context.Context, exec SQLExecutor, id int, settings models.StageSettings) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	executor := r.getExecutor(exec)
	settingsJSON, err := models.EncodeStageSettings(stage.Settings)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO stages (tournament_id, name, stage_order, stage_type, status, settings, next_stage_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err = executor.QueryRowContext(ctx, query,
		stage.TournamentID, stage.Name, stage.Order, stage.Type, stage.Status, settingsJSON, stage.NextStageID,
	).Scan(&stage.ID, &stage.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "stages_tournament_id_stage_order_key" {
					return ErrStageOrderConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "stages_tournament_id_fkey" {
					return ErrStageTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create stage: %w", err)
	}
	return nil
}

func (r *postgresStageRepository) scanStage(rowScanner interface{ Scan(...interface{}) error }) (*models.Stage, error) {
	var s models.Stage
	var settingsJSON sql.NullString
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.Name, &s.Order, &s.Type, &s.Status, &settingsJSON, &s.NextStageID, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	var raw *string
	if settingsJSON.Valid {
		raw = &settingsJSON.String
	}
	settings, err := models.DecodeStageSettings(s.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("stage %d: %w", s.ID, err)
	}
	s.Settings = settings
	return &s, nil
}

const stageColumns = `id, tournament_id, name, stage_order, stage_type, status, settings, next_stage_id, created_at`

func (r *postgresStageRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = $1`
	return r.scanStage(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + stageColumns + ` FROM stages WHERE tournament_id = $1 ORDER BY stage_order ASC`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		s, errScan := r.scanStage(rows)
		if errScan != nil {
			return nil, errScan
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.StageStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE stages SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) UpdateSettings(ctx context.Context, exec SQLExecutor, id int, settings models.StageSettings) error {
	executor := r.getExecutor(exec)
	settingsJSON, err := models.EncodeStageSettings(settings)
	if err != nil {
		return err
	}
	result, err := executor.ExecContext(ctx, `UPDATE stages SET settings = $1 WHERE id = $2`, settingsJSON, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}
