package repository

import (
	"context"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByIDTx(tx *gorm.DB, id uint) (*model.Supplier, error)
	List(ctx context.Context) ([]model.Supplier, error)
	Deactivate(ctx context.Context, id uint) error
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Supplier, error) {
	var s model.Supplier
	err := tx.First(&s, id).Error
	return &s, err
}

func (r *supplierRepo) List(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
