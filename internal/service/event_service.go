package service

import (
	"context"
	"strings"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"

	"github.com/rs/zerolog/log"
)

// EventService plans assemblies for dated events. A planned assembly cannot
// be deleted while the event exists.
type EventService interface {
	Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error)
	List(ctx context.Context) ([]dto.EventResponse, error)
}

type eventService struct {
	events repository.EventRepository
	goods  repository.FinishedGoodRepository
}

func NewEventService(events repository.EventRepository, goods repository.FinishedGoodRepository) EventService {
	return &eventService{events: events, goods: goods}
}

func (s *eventService) Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	if req.EventDate.IsZero() {
		return nil, invalid("event_date", "is required")
	}

	ev := &model.Event{Name: name, EventDate: req.EventDate.UTC(), Notes: req.Notes}
	seen := make(map[uint]bool, len(req.Assemblies))
	for i, a := range req.Assemblies {
		if a.Quantity <= 0 {
			return nil, invalid("assemblies", "entry %d: quantity must be greater than zero", i)
		}
		if seen[a.FinishedGoodID] {
			return nil, invalid("assemblies", "entry %d: assembly %d listed twice", i, a.FinishedGoodID)
		}
		seen[a.FinishedGoodID] = true
		if _, err := s.goods.FindByID(ctx, a.FinishedGoodID); err != nil {
			return nil, lookupErr("finished good", a.FinishedGoodID, err)
		}
		ev.Assemblies = append(ev.Assemblies, model.EventAssembly{FinishedGoodID: a.FinishedGoodID, Quantity: a.Quantity})
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, dbErr("insert event", err)
	}
	log.Info().Uint("event_id", ev.ID).Int("assemblies", len(ev.Assemblies)).Msg("event created")
	resp := eventToResponse(ev)
	return &resp, nil
}

func (s *eventService) List(ctx context.Context) ([]dto.EventResponse, error) {
	rows, err := s.events.List(ctx)
	if err != nil {
		return nil, dbErr("list events", err)
	}
	out := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, eventToResponse(&rows[i]))
	}
	return out, nil
}

func eventToResponse(e *model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:         e.ID,
		Name:       e.Name,
		EventDate:  e.EventDate,
		Notes:      e.Notes,
		Assemblies: make([]dto.EventAssemblyResponse, 0, len(e.Assemblies)),
	}
	for _, a := range e.Assemblies {
		resp.Assemblies = append(resp.Assemblies, dto.EventAssemblyResponse{FinishedGoodID: a.FinishedGoodID, Quantity: a.Quantity})
	}
	return resp
}
