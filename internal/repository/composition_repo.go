package repository

import (
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompositionRepository stores the BOM edges. Every method takes the handle
// to run on so graph walks can share the caller's transaction.
type CompositionRepository interface {
	CreateTx(tx *gorm.DB, c *model.Composition) error
	FindByIDTx(tx *gorm.DB, id uint) (*model.Composition, error)

	// ListByAssemblyTx returns the direct edges of an assembly with their
	// component rows preloaded, ordered by sort_order then id.
	ListByAssemblyTx(tx *gorm.DB, assemblyID uint) ([]model.Composition, error)

	// ChildAssemblyIDsTx returns the finished goods directly contained in parentID.
	ChildAssemblyIDsTx(tx *gorm.DB, parentID uint) ([]uint, error)

	// ParentAssemblyIDsTx returns the assemblies holding an edge to ref.
	ParentAssemblyIDsTx(tx *gorm.DB, ref model.ComponentRef) ([]uint, error)

	FindByComponentTx(tx *gorm.DB, assemblyID uint, ref model.ComponentRef) (*model.Composition, error)
	CountByAssemblyTx(tx *gorm.DB, assemblyID uint) (int64, error)
	MaxSortOrderTx(tx *gorm.DB, assemblyID uint) (int, error)
	UpdateQuantityTx(tx *gorm.DB, id uint, qty decimal.Decimal) error
	DeleteTx(tx *gorm.DB, id uint) error
	DeleteByAssemblyTx(tx *gorm.DB, assemblyID uint) error

	DB() *gorm.DB
}

type compositionRepo struct{ db *gorm.DB }

func NewCompositionRepository(db *gorm.DB) CompositionRepository {
	return &compositionRepo{db: db}
}

func (r *compositionRepo) CreateTx(tx *gorm.DB, c *model.Composition) error {
	return tx.Omit(clause.Associations).Create(c).Error
}

func (r *compositionRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Composition, error) {
	var c model.Composition
	err := tx.Preload("FinishedUnit").Preload("MaterialUnit").Preload("FinishedGood").
		First(&c, id).Error
	return &c, err
}

func (r *compositionRepo) ListByAssemblyTx(tx *gorm.DB, assemblyID uint) ([]model.Composition, error) {
	var rows []model.Composition
	err := tx.Where("assembly_id = ?", assemblyID).
		Preload("FinishedUnit").Preload("MaterialUnit").Preload("FinishedGood").
		Order("sort_order ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *compositionRepo) ChildAssemblyIDsTx(tx *gorm.DB, parentID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.Composition{}).
		Where("assembly_id = ? AND finished_good_id IS NOT NULL", parentID).
		Order("finished_good_id ASC").
		Pluck("finished_good_id", &ids).Error
	return ids, err
}

func (r *compositionRepo) ParentAssemblyIDsTx(tx *gorm.DB, ref model.ComponentRef) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.Composition{}).
		Where(ref.Column()+" = ?", ref.ID()).
		Distinct().
		Order("assembly_id ASC").
		Pluck("assembly_id", &ids).Error
	return ids, err
}

func (r *compositionRepo) FindByComponentTx(tx *gorm.DB, assemblyID uint, ref model.ComponentRef) (*model.Composition, error) {
	var c model.Composition
	err := tx.Where("assembly_id = ? AND "+ref.Column()+" = ?", assemblyID, ref.ID()).First(&c).Error
	return &c, err
}

func (r *compositionRepo) CountByAssemblyTx(tx *gorm.DB, assemblyID uint) (int64, error) {
	var n int64
	err := tx.Model(&model.Composition{}).Where("assembly_id = ?", assemblyID).Count(&n).Error
	return n, err
}

func (r *compositionRepo) MaxSortOrderTx(tx *gorm.DB, assemblyID uint) (int, error) {
	var maxOrder int
	err := tx.Model(&model.Composition{}).
		Where("assembly_id = ?", assemblyID).
		Select("COALESCE(MAX(sort_order), -1)").
		Scan(&maxOrder).Error
	return maxOrder, err
}

func (r *compositionRepo) UpdateQuantityTx(tx *gorm.DB, id uint, qty decimal.Decimal) error {
	return tx.Model(&model.Composition{}).Where("id = ?", id).
		Update("component_quantity", qty).Error
}

func (r *compositionRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Composition{}, id).Error
}

func (r *compositionRepo) DeleteByAssemblyTx(tx *gorm.DB, assemblyID uint) error {
	return tx.Where("assembly_id = ?", assemblyID).Delete(&model.Composition{}).Error
}

func (r *compositionRepo) DB() *gorm.DB { return r.db }
