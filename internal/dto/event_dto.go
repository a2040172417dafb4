package dto

import "time"

type EventAssemblyRequest struct {
	FinishedGoodID uint `json:"finished_good_id" validate:"required"`
	Quantity       int  `json:"quantity"         validate:"required,min=1"`
}

type CreateEventRequest struct {
	Name       string                 `json:"name"       validate:"required,max=200"`
	EventDate  time.Time              `json:"event_date" validate:"required"`
	Notes      *string                `json:"notes"`
	Assemblies []EventAssemblyRequest `json:"assemblies" validate:"dive"`
}

type EventAssemblyResponse struct {
	FinishedGoodID uint `json:"finished_good_id"`
	Quantity       int  `json:"quantity"`
}

type EventResponse struct {
	ID         uint                    `json:"id"`
	Name       string                  `json:"name"`
	EventDate  time.Time               `json:"event_date"`
	Notes      *string                 `json:"notes"`
	Assemblies []EventAssemblyResponse `json:"assemblies"`
}
