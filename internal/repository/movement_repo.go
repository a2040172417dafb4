package repository

import (
	"context"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"gorm.io/gorm"
)

type MovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.InventoryMovement) error
	List(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, filter dto.MovementFilter) ([]model.InventoryMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{})
	if filter.ComponentType != "" {
		q = q.Where("component_type = ?", filter.ComponentType)
	}
	if filter.ComponentID != 0 {
		q = q.Where("component_id = ?", filter.ComponentID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.OperationID != "" {
		q = q.Where("operation_id = ?", filter.OperationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.InventoryMovement
	err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}
