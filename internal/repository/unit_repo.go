package repository

import (
	"context"
	"strings"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitRepository covers the two leaf catalogs: finished units and
// material units.
type UnitRepository interface {
	CreateFinishedUnit(ctx context.Context, u *model.FinishedUnit) error
	FindFinishedUnitTx(tx *gorm.DB, id uint) (*model.FinishedUnit, error)
	ListFinishedUnits(ctx context.Context, filter dto.UnitFilter) ([]model.FinishedUnit, int64, error)
	FinishedUnitSlugExistsTx(tx *gorm.DB, slug string) (bool, error)

	CreateMaterialUnit(ctx context.Context, u *model.MaterialUnit) error
	FindMaterialUnitTx(tx *gorm.DB, id uint) (*model.MaterialUnit, error)
	ListMaterialUnits(ctx context.Context, filter dto.UnitFilter) ([]model.MaterialUnit, int64, error)
	MaterialUnitSlugExistsTx(tx *gorm.DB, slug string) (bool, error)

	UpdateUnitCost(ctx context.Context, ref model.ComponentRef, cost decimal.Decimal) error

	// AdjustFinishedUnitTx / AdjustMaterialUnitTx apply delta only when the
	// resulting count stays >= 0. false means the guard rejected it.
	AdjustFinishedUnitTx(tx *gorm.DB, id uint, delta int) (bool, error)
	AdjustMaterialUnitTx(tx *gorm.DB, id uint, delta decimal.Decimal) (bool, error)

	DB() *gorm.DB
}

type unitRepo struct{ db *gorm.DB }

func NewUnitRepository(db *gorm.DB) UnitRepository { return &unitRepo{db: db} }

func (r *unitRepo) CreateFinishedUnit(ctx context.Context, u *model.FinishedUnit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *unitRepo) FindFinishedUnitTx(tx *gorm.DB, id uint) (*model.FinishedUnit, error) {
	var u model.FinishedUnit
	err := tx.First(&u, id).Error
	return &u, err
}

func (r *unitRepo) ListFinishedUnits(ctx context.Context, filter dto.UnitFilter) ([]model.FinishedUnit, int64, error) {
	var rows []model.FinishedUnit
	var total int64

	q := r.db.WithContext(ctx).Model(&model.FinishedUnit{})
	if filter.Search != "" {
		q = q.Where("LOWER(display_name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		q = q.Where("inventory_count < minimum_stock")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, limit := pageBounds(filter.Page, filter.Limit)
	err := q.Order("display_name ASC").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error
	return rows, total, err
}

func (r *unitRepo) FinishedUnitSlugExistsTx(tx *gorm.DB, slug string) (bool, error) {
	var n int64
	err := tx.Model(&model.FinishedUnit{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *unitRepo) CreateMaterialUnit(ctx context.Context, u *model.MaterialUnit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *unitRepo) FindMaterialUnitTx(tx *gorm.DB, id uint) (*model.MaterialUnit, error) {
	var u model.MaterialUnit
	err := tx.First(&u, id).Error
	return &u, err
}

func (r *unitRepo) ListMaterialUnits(ctx context.Context, filter dto.UnitFilter) ([]model.MaterialUnit, int64, error) {
	var rows []model.MaterialUnit
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MaterialUnit{})
	if filter.Search != "" {
		q = q.Where("LOWER(display_name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.LowStock {
		q = q.Where("inventory_count < minimum_stock")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, limit := pageBounds(filter.Page, filter.Limit)
	err := q.Order("display_name ASC").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error
	return rows, total, err
}

func (r *unitRepo) MaterialUnitSlugExistsTx(tx *gorm.DB, slug string) (bool, error) {
	var n int64
	err := tx.Model(&model.MaterialUnit{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *unitRepo) UpdateUnitCost(ctx context.Context, ref model.ComponentRef, cost decimal.Decimal) error {
	var m interface{}
	switch ref.Type() {
	case model.ComponentFinishedUnit:
		m = &model.FinishedUnit{}
	case model.ComponentMaterialUnit:
		m = &model.MaterialUnit{}
	default:
		return gorm.ErrInvalidData
	}
	res := r.db.WithContext(ctx).Model(m).Where("id = ?", ref.ID()).Update("unit_cost", cost)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *unitRepo) AdjustFinishedUnitTx(tx *gorm.DB, id uint, delta int) (bool, error) {
	res := tx.Model(&model.FinishedUnit{}).
		Where("id = ? AND inventory_count + ? >= 0", id, delta).
		Update("inventory_count", gorm.Expr("inventory_count + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdjustMaterialUnitTx rounds in SQL so fractional stock on SQLite (REAL
// storage) does not drift below the exact decimal value.
func (r *unitRepo) AdjustMaterialUnitTx(tx *gorm.DB, id uint, delta decimal.Decimal) (bool, error) {
	delta = model.RoundQuantity(delta)
	res := tx.Model(&model.MaterialUnit{}).
		Where("id = ? AND ROUND(inventory_count + ?, 4) >= 0", id, delta).
		Update("inventory_count", gorm.Expr("ROUND(inventory_count + ?, 4)", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *unitRepo) DB() *gorm.DB { return r.db }

// pageBounds clamps pagination input the same way across list endpoints.
func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}
