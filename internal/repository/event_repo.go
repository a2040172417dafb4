package repository

import (
	"context"

	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	// EventNamesUsingAssemblyTx returns the names of events that plan the assembly.
	EventNamesUsingAssemblyTx(tx *gorm.DB, assemblyID uint) ([]string, error)
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository { return &eventRepo{db: db} }

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepo) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).Preload("Assemblies").Order("event_date ASC").Find(&events).Error
	return events, err
}

func (r *eventRepo) EventNamesUsingAssemblyTx(tx *gorm.DB, assemblyID uint) ([]string, error) {
	var names []string
	err := tx.Model(&model.Event{}).
		Joins("JOIN event_assemblies ON event_assemblies.event_id = events.id").
		Where("event_assemblies.finished_good_id = ?", assemblyID).
		Order("events.name ASC").
		Pluck("events.name", &names).Error
	return names, err
}
