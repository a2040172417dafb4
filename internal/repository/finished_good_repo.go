package repository

import (
	"context"
	"strings"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FinishedGoodRepository is the data access contract for assembly nodes.
// Methods with a Tx suffix run on whatever handle they are given: a live
// transaction, or DB().WithContext(ctx) for plain reads.
type FinishedGoodRepository interface {
	CreateTx(tx *gorm.DB, fg *model.FinishedGood) error
	FindByID(ctx context.Context, id uint) (*model.FinishedGood, error)
	FindByIDTx(tx *gorm.DB, id uint) (*model.FinishedGood, error)
	FindBySlug(ctx context.Context, slug string) (*model.FinishedGood, error)
	FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.FinishedGood, error)
	List(ctx context.Context, filter dto.AssemblyFilter) ([]model.FinishedGood, int64, error)
	UpdateTx(tx *gorm.DB, fg *model.FinishedGood) error
	DeleteTx(tx *gorm.DB, id uint) error
	SlugExistsTx(tx *gorm.DB, slug string, excludeID uint) (bool, error)

	// LockTx takes a row lock on the assembly (no-op on SQLite, which
	// serialises writers already).
	LockTx(tx *gorm.DB, id uint) (*model.FinishedGood, error)

	// AdjustInventoryTx applies delta only if the count stays >= 0.
	// Returns false when the guard rejected the update.
	AdjustInventoryTx(tx *gorm.DB, id uint, delta int) (bool, error)

	// FindBareForUnitTx returns the BARE wrapper whose single edge is the
	// given finished unit, or gorm.ErrRecordNotFound.
	FindBareForUnitTx(tx *gorm.DB, unitID uint) (*model.FinishedGood, error)

	DB() *gorm.DB
}

type finishedGoodRepo struct{ db *gorm.DB }

func NewFinishedGoodRepository(db *gorm.DB) FinishedGoodRepository {
	return &finishedGoodRepo{db: db}
}

func (r *finishedGoodRepo) CreateTx(tx *gorm.DB, fg *model.FinishedGood) error {
	return tx.Create(fg).Error
}

func (r *finishedGoodRepo) FindByID(ctx context.Context, id uint) (*model.FinishedGood, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *finishedGoodRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.FinishedGood, error) {
	var fg model.FinishedGood
	err := tx.First(&fg, id).Error
	return &fg, err
}

func (r *finishedGoodRepo) FindBySlug(ctx context.Context, slug string) (*model.FinishedGood, error) {
	var fg model.FinishedGood
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&fg).Error
	return &fg, err
}

func (r *finishedGoodRepo) FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.FinishedGood, error) {
	var rows []model.FinishedGood
	if len(ids) == 0 {
		return rows, nil
	}
	err := tx.Where("id IN ?", ids).Order("display_name ASC").Find(&rows).Error
	return rows, err
}

func (r *finishedGoodRepo) List(ctx context.Context, filter dto.AssemblyFilter) ([]model.FinishedGood, int64, error) {
	var rows []model.FinishedGood
	var total int64

	q := r.db.WithContext(ctx).Model(&model.FinishedGood{})
	if filter.AssemblyType != "" {
		q = q.Where("assembly_type = ?", strings.ToUpper(filter.AssemblyType))
	}
	if filter.Search != "" {
		// LOWER/LIKE instead of ILIKE so the same query runs on SQLite
		q = q.Where("LOWER(display_name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	err := q.Order("display_name ASC").Order("id ASC").
		Limit(limit).Offset((page - 1) * limit).Find(&rows).Error
	return rows, total, err
}

func (r *finishedGoodRepo) UpdateTx(tx *gorm.DB, fg *model.FinishedGood) error {
	return tx.Omit(clause.Associations).Save(fg).Error
}

func (r *finishedGoodRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.FinishedGood{}, id).Error
}

func (r *finishedGoodRepo) SlugExistsTx(tx *gorm.DB, slug string, excludeID uint) (bool, error) {
	var n int64
	q := tx.Model(&model.FinishedGood{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *finishedGoodRepo) LockTx(tx *gorm.DB, id uint) (*model.FinishedGood, error) {
	var fg model.FinishedGood
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&fg, id).Error
	return &fg, err
}

func (r *finishedGoodRepo) AdjustInventoryTx(tx *gorm.DB, id uint, delta int) (bool, error) {
	res := tx.Model(&model.FinishedGood{}).
		Where("id = ? AND inventory_count + ? >= 0", id, delta).
		Update("inventory_count", gorm.Expr("inventory_count + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *finishedGoodRepo) FindBareForUnitTx(tx *gorm.DB, unitID uint) (*model.FinishedGood, error) {
	var fg model.FinishedGood
	err := tx.Model(&model.FinishedGood{}).
		Joins("JOIN compositions ON compositions.assembly_id = finished_goods.id").
		Where("finished_goods.assembly_type = ? AND compositions.finished_unit_id = ?", model.AssemblyBare, unitID).
		Order("finished_goods.id ASC").
		First(&fg).Error
	return &fg, err
}

func (r *finishedGoodRepo) DB() *gorm.DB { return r.db }
