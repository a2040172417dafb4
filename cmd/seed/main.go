// cmd/seed loads a small demo catalog: two cookies, packaging, a gift box
// and a nested holiday set.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/config"
	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/infra"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	svcs := router.NewServices(db, nil, infra.NewMemoryCache(cfg.CacheSize, time.Minute))
	ctx := context.Background()

	must := func(err error, what string) {
		if err != nil {
			log.Fatal().Err(err).Msg("seed: " + what)
		}
	}

	chip, err := svcs.Unit.CreateFinishedUnit(ctx, dto.CreateFinishedUnitRequest{
		DisplayName: "Chocolate Chip Cookie", UnitCost: decimal.RequireFromString("0.50"),
		InventoryCount: 48, MinimumStock: 12, Category: "cookies",
	})
	must(err, "chocolate chip cookie")
	snicker, err := svcs.Unit.CreateFinishedUnit(ctx, dto.CreateFinishedUnitRequest{
		DisplayName: "Snickerdoodle", UnitCost: decimal.RequireFromString("0.45"),
		InventoryCount: 36, MinimumStock: 12, Category: "cookies",
	})
	must(err, "snickerdoodle")
	box, err := svcs.Unit.CreateMaterialUnit(ctx, dto.CreateMaterialUnitRequest{
		DisplayName: "Gift Box", UnitCost: decimal.RequireFromString("2.00"),
		InventoryCount: decimal.NewFromInt(20), MinimumStock: decimal.NewFromInt(5),
	})
	must(err, "gift box")
	ribbon, err := svcs.Unit.CreateMaterialUnit(ctx, dto.CreateMaterialUnitRequest{
		DisplayName: "Ribbon", Unit: "piece", UnitCost: decimal.RequireFromString("0.50"),
		InventoryCount: decimal.NewFromInt(40), MinimumStock: decimal.NewFromInt(10),
	})
	must(err, "ribbon")

	sampler, err := svcs.Assembly.Create(ctx, dto.CreateAssemblyInput{
		DisplayName:  "Cookie Sampler",
		AssemblyType: model.AssemblyGiftBox,
		Components: []dto.ComponentSpec{
			{Component: model.FinishedUnitRef(chip.ID), Quantity: decimal.NewFromInt(6)},
			{Component: model.FinishedUnitRef(snicker.ID), Quantity: decimal.NewFromInt(6)},
			{Component: model.MaterialUnitRef(box.ID), Quantity: decimal.NewFromInt(1)},
			{Component: model.MaterialUnitRef(ribbon.ID), Quantity: decimal.NewFromInt(1)},
		},
	})
	must(err, "cookie sampler")

	holiday, err := svcs.Assembly.Create(ctx, dto.CreateAssemblyInput{
		DisplayName:  "Holiday Duo",
		AssemblyType: model.AssemblyHolidaySet,
		Components: []dto.ComponentSpec{
			{Component: model.FinishedGoodRef(sampler.ID), Quantity: decimal.NewFromInt(2)},
			{Component: model.MaterialUnitRef(ribbon.ID), Quantity: decimal.NewFromInt(1)},
		},
	})
	must(err, "holiday duo")

	costs, err := svcs.Composition.CalculateComponentCosts(ctx, holiday.ID)
	must(err, "holiday duo costs")

	log.Info().
		Uint("sampler_id", sampler.ID).
		Uint("holiday_id", holiday.ID).
		Str("holiday_cost", costs.TotalAssemblyCost.StringFixed(2)).
		Msg("seed complete")
}
