package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CostingUC *costing.CostingUseCase
	JWTSecret string
	JWTIssuer string
	Log       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleCostos)

	costs := protected.Group("/costs")
	h := NewCostingHandler(deps.CostingUC, deps.Log)

	costs.Get("/products/:id/bom-simulation.pdf", h.BomCostSheetPDF)
	costs.Get("/products/:id/bom-simulation", h.SimulateBomCost)
	costs.Post("/products/:id/calculate", writers, h.CalculateProductCosts)
	costs.Get("/products/:id", h.GetProductCost)

	costs.Get("/tasks/:id/estimated-time", h.GetEstimatedTaskTime)
	costs.Get("/tasks/:id/cost", h.GetTaskCost)

	// Recepciones de inventario (escritura)
	costs.Post("/average-cost/receipts", writers, h.UpdateAverageCostOnReceipt)
}
