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
	ErrStagePromotionNotFound = errors.New("stage promotion not found")
	ErrStagePromotionConflict = errors.New("stage already has a promotion configured")
	ErrStagePromotionInvalid  = errors.New("stage promotion stage conflict or invalid")
)

type StagePromotionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, promo *models.StagePromotion) error
	GetByStage(ctx context.Context, exec SQLExecutor, stageID int) (*models.StagePromotion, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresStagePromotionRepository struct {
	db *sql.DB
}

func NewPostgresStagePromotionRepository(db *sql.DB) StagePromotionRepository {
	return &postgresStagePromotionRepository{db: db}
}

func (r *postgresStagePromotionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStagePromotionRepository) Create(ctx context.Context, exec SQLExecutor, promo *models.StagePromotion) error {
	executor := r.getExecutor(exec)
	ruleJSON, err := models.EncodePromotionRule(promo.Rule)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO stage_promotions (stage_id, next_stage_id, rule_type, rule_config)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err = executor.QueryRowContext(ctx, query, promo.StageID, promo.NextStageID, promo.RuleType, ruleJSON).
		Scan(&promo.ID, &promo.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrStagePromotionConflict
			case "23503":
				return ErrStagePromotionInvalid
			}
		}
		return fmt.Errorf("failed to create promotion for stage %d: %w", promo.StageID, err)
	}
	return nil
}

func (r *postgresStagePromotionRepository) GetByStage(ctx context.Context, exec SQLExecutor, stageID int) (*models.StagePromotion, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, stage_id, next_stage_id, rule_type, rule_config, created_at
		FROM stage_promotions WHERE stage_id = $1`
	var promo models.StagePromotion
	var ruleJSON sql.NullString
	err := executor.QueryRowContext(ctx, query, stageID).Scan(
		&promo.ID, &promo.StageID, &promo.NextStageID, &promo.RuleType, &ruleJSON, &promo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStagePromotionNotFound
		}
		return nil, err
	}
	var raw *string
	if ruleJSON.Valid {
		raw = &ruleJSON.String
	}
	rule, err := models.DecodePromotionRule(promo.RuleType, raw)
	if err != nil {
		return nil, fmt.Errorf("stage %d: %w", stageID, err)
	}
	promo.Rule = rule
	return &promo, nil
}

func (r *postgresStagePromotionRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM stage_promotions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStagePromotionNotFound)
}

type PromotionAuditRepository interface {
	// Append inserts an immutable history row; there is deliberately no
	// update or delete.
	Append(ctx context.Context, exec SQLExecutor, audit *models.PromotionAudit) error
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.PromotionAudit, error)
}

type postgresPromotionAuditRepository struct {
	db *sql.DB
}

func NewPostgresPromotionAuditRepository(db *sql.DB) PromotionAuditRepository {
	return &postgresPromotionAuditRepository{db: db}
}

func (r *postgresPromotionAuditRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPromotionAuditRepository) Append(ctx context.Context, exec SQLExecutor, audit *models.PromotionAudit) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO promotion_audits (stage_id, triggered_by, simulated, result)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, audit.StageID, audit.TriggeredBy, audit.Simulated, audit.Result).
		Scan(&audit.ID, &audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append promotion audit for stage %d: %w", audit.StageID, err)
	}
	return nil
}

func (r *postgresPromotionAuditRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.PromotionAudit, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, stage_id, triggered_by, simulated, result, created_at
		FROM promotion_audits WHERE stage_id = $1 ORDER BY id ASC`
	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := make([]*models.PromotionAudit, 0)
	for rows.Next() {
		var a models.PromotionAudit
		if err := rows.Scan(&a.ID, &a.StageID, &a.TriggeredBy, &a.Simulated, &a.Result, &a.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, &a)
	}
	return audits, rows.Err()
}
