package router

import (
	"github.com/kentonium3/bake-tracker-sub002/internal/config"
	"github.com/kentonium3/bake-tracker-sub002/internal/handler"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"
	"github.com/kentonium3/bake-tracker-sub002/internal/middleware"
	"github.com/kentonium3/bake-tracker-sub002/internal/repository"
	"github.com/kentonium3/bake-tracker-sub002/internal/service"
	"github.com/kentonium3/bake-tracker-sub002/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service layer, shared by the HTTP API and the seed
// command.
type Services struct {
	Inventory   service.InventoryService
	Composition service.CompositionService
	Assembly    service.AssemblyService
	Unit        service.UnitService
	Purchase    service.PurchaseService
	Event       service.EventService
}

// NewServices wires repositories into services. rdb and cache may be nil.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(db *gorm.DB, rdb *redis.Client, cache service.Cache) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	goodsRepo := repository.NewFinishedGoodRepository(db)
	edgeRepo := repository.NewCompositionRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	eventRepo := repository.NewEventRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	// Worker dispatcher: alerts are skipped without Redis.
	var dispatcher service.AlertDispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	inventorySvc := service.NewInventoryService(unitRepo, goodsRepo, movementRepo, dispatcher)
	engine := service.NewCompositionService(edgeRepo, goodsRepo, unitRepo, inventorySvc, cache)
	assemblySvc := service.NewAssemblyService(goodsRepo, edgeRepo, unitRepo, eventRepo, engine, inventorySvc)

	return &Services{
		Inventory:   inventorySvc,
		Composition: engine,
		Assembly:    assemblySvc,
		Unit:        service.NewUnitService(unitRepo, engine, inventorySvc, assemblySvc),
		Purchase:    service.NewPurchaseService(purchaseRepo, supplierRepo),
		Event:       service.NewEventService(eventRepo, goodsRepo),
	}
}

// New wires all dependencies and returns a configured Gin engine.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cache service.Cache) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	svcs := NewServices(db, rdb, cache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	assembliesH := handler.NewAssembliesHandler(svcs.Assembly, svcs.Composition)
	compositionsH := handler.NewCompositionsHandler(svcs.Composition)
	unitsH := handler.NewUnitsHandler(svcs.Unit)
	purchasesH := handler.NewPurchasesHandler(svcs.Purchase)
	movementsH := handler.NewMovementsHandler(svcs.Inventory)
	eventsH := handler.NewEventsHandler(svcs.Event)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		asm := v1.Group("/assemblies")
		{
			asm.POST("", assembliesH.Create)
			asm.GET("", assembliesH.List)
			asm.GET("/slug/:slug", assembliesH.GetBySlug)
			asm.GET("/:id", assembliesH.Get)
			asm.PUT("/:id", assembliesH.Update)
			asm.DELETE("/:id", assembliesH.Delete)

			asm.POST("/:id/components", assembliesH.AddComponent)
			asm.PATCH("/:id/components/:type/:component_id", assembliesH.UpdateComponentQuantity)
			asm.DELETE("/:id/components/:type/:component_id", assembliesH.RemoveComponent)

			asm.GET("/:id/hierarchy", assembliesH.Hierarchy)
			asm.GET("/:id/flatten", assembliesH.Flatten)
			asm.GET("/:id/costs", assembliesH.Costs)
			asm.GET("/:id/requirements", assembliesH.Requirements)
			asm.GET("/:id/availability", assembliesH.Availability)
			asm.GET("/:id/bom.pdf", assembliesH.BOMSheet)

			asm.POST("/:id/produce", assembliesH.Produce)
			asm.POST("/:id/disassemble", assembliesH.Disassemble)
		}

		comp := v1.Group("/compositions")
		{
			comp.POST("", compositionsH.Create)
			comp.POST("/cycle-check", compositionsH.CycleCheck)
			comp.PATCH("/:id", compositionsH.UpdateQuantity)
			comp.DELETE("/:id", compositionsH.Delete)
		}

		fu := v1.Group("/finished-units")
		{
			fu.POST("", unitsH.CreateFinishedUnit)
			fu.GET("", unitsH.ListFinishedUnits)
			fu.GET("/:id", unitsH.GetFinishedUnit)
			fu.PATCH("/:id/cost", unitsH.UpdateCost(model.ComponentFinishedUnit))
			fu.POST("/:id/adjust", unitsH.Adjust(model.ComponentFinishedUnit))
			fu.POST("/:id/production", unitsH.RecordProduction)
		}

		mu := v1.Group("/material-units")
		{
			mu.POST("", unitsH.CreateMaterialUnit)
			mu.GET("", unitsH.ListMaterialUnits)
			mu.GET("/:id", unitsH.GetMaterialUnit)
			mu.PATCH("/:id/cost", unitsH.UpdateCost(model.ComponentMaterialUnit))
			mu.POST("/:id/adjust", unitsH.Adjust(model.ComponentMaterialUnit))
		}

		v1.POST("/suppliers", purchasesH.CreateSupplier)
		v1.GET("/suppliers", purchasesH.ListSuppliers)
		v1.DELETE("/suppliers/:id", purchasesH.DeactivateSupplier)

		v1.POST("/ingredients", purchasesH.CreateIngredient)
		v1.GET("/ingredients", purchasesH.ListIngredients)
		v1.POST("/ingredients/:id/consume", purchasesH.ConsumeIngredient)

		v1.POST("/products", purchasesH.CreateProduct)
		v1.GET("/products", purchasesH.ListProducts)
		v1.GET("/products/:id/price-trend", purchasesH.PriceTrend)

		v1.POST("/purchases", purchasesH.RecordPurchase)

		v1.GET("/movements", movementsH.List)

		v1.POST("/events", eventsH.Create)
		v1.GET("/events", eventsH.List)
	}

	return r
}
