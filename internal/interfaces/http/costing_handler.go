package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/domain"
)

// CostingHandler expone el motor de costeo por HTTP (protegido).
type CostingHandler struct {
	uc  *costing.CostingUseCase
	log zerolog.Logger
}

// NewCostingHandler construye el handler.
func NewCostingHandler(uc *costing.CostingUseCase, log zerolog.Logger) *CostingHandler {
	return &CostingHandler{uc: uc, log: log}
}

func (h *CostingHandler) currency(c string) string {
	if c == "" {
		return h.uc.Defaults().DefaultCurrency
	}
	return c
}

func (h *CostingHandler) prefix(p string) string {
	if p == "" {
		return h.uc.Defaults().DefaultPrefix
	}
	return p
}

// fail traduce errores de dominio a respuestas HTTP.
func (h *CostingHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownFormula):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "UNKNOWN_FORMULA", Message: err.Error()})
	case errors.Is(err, domain.ErrLockNotObtained):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCKED", Message: "hay otro recálculo en curso, reintente"})
	case errors.Is(err, costing.ErrNoRenderer):
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "hoja de costo no disponible"})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("error en el motor de costeo")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func queryDecimal(c *fiber.Ctx, key, def string) (decimal.Decimal, error) {
	v := c.Query(key, def)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return d, nil
}

// GetProductCost godoc
// @Summary      Costo vigente de un producto
// @Description  Suma de los componentes de costo activos con el prefijo indicado; si no hay, usa variante o proveedor.
// @Tags         costs
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        currency  query  string  false  "Moneda (por defecto COSTING_DEFAULT_CURRENCY)"
// @Param        prefix    query  string  false  "Prefijo de tipo de costo (por defecto EST_STD)"
// @Success      200  {object}  dto.ProductCostResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/costs/products/{id} [get]
func (h *CostingHandler) GetProductCost(c *fiber.Ctx) error {
	productID := c.Params("id")
	currency, prefix := h.currency(c.Query("currency")), h.prefix(c.Query("prefix"))
	cost, err := h.uc.GetProductCost(c.UserContext(), productID, currency, prefix)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ProductCostResponse{
		ProductID:               productID,
		CurrencyUomID:           currency,
		CostComponentTypePrefix: prefix,
		Cost:                    cost,
	})
}

// CalculateProductCosts godoc
// @Summary      Recalcular costos estándar de un producto
// @Description  Expira los componentes vigentes del prefijo y registra material, ruta y ajustes nuevos.
// @Tags         costs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true   "ID del producto"
// @Param        body  body  dto.CalculateProductCostsRequest  false  "currency_uom_id, cost_component_type_prefix"
// @Success      200   {object}  dto.CalculateProductCostsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/costs/products/{id}/calculate [post]
func (h *CostingHandler) CalculateProductCosts(c *fiber.Ctx) error {
	var in dto.CalculateProductCostsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	productID := c.Params("id")
	currency, prefix := h.currency(in.CurrencyUomID), h.prefix(in.CostComponentTypePrefix)
	total, err := h.uc.CalculateProductCosts(c.UserContext(), productID, currency, prefix)
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Info().
		Str("product_id", productID).
		Str("user_id", GetUserID(c)).
		Str("total", total.String()).
		Msg("costos recalculados")
	return c.JSON(dto.CalculateProductCostsResponse{
		ProductID:               productID,
		CurrencyUomID:           currency,
		CostComponentTypePrefix: prefix,
		TotalCost:               total,
	})
}

func (h *CostingHandler) simulationInput(c *fiber.Ctx) (costing.SimulationInput, error) {
	qty, err := queryDecimal(c, "quantity", "1")
	if err != nil {
		return costing.SimulationInput{}, err
	}
	return costing.SimulationInput{
		ProductID:     c.Params("id"),
		Quantity:      qty,
		CurrencyUomID: h.currency(c.Query("currency")),
		FacilityID:    c.Query("facility_id"),
	}, nil
}

// SimulateBomCost godoc
// @Summary      Simular costo de fabricación
// @Description  Explota un nivel del BOM: cantidad requerida, en mano y costo por componente.
// @Tags         costs
// @Security     Bearer
// @Produce      json
// @Param        id           path   string  true   "ID del producto"
// @Param        quantity     query  string  false  "Cantidad a fabricar (por defecto 1)"
// @Param        currency     query  string  false  "Moneda"
// @Param        facility_id  query  string  false  "Bodega. Vacío = cantidad en mano global."
// @Success      200  {object}  dto.BomSimulationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/costs/products/{id}/bom-simulation [get]
func (h *CostingHandler) SimulateBomCost(c *fiber.Ctx) error {
	in, err := h.simulationInput(c)
	if err != nil {
		return h.fail(c, err)
	}
	nodes, err := h.uc.SimulateBomCost(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromBomNodes(in, nodes))
}

// BomCostSheetPDF godoc
// @Summary      Hoja de costo de fabricación en PDF
// @Tags         costs
// @Security     Bearer
// @Produce      application/pdf
// @Param        id           path   string  true   "ID del producto"
// @Param        quantity     query  string  false  "Cantidad a fabricar (por defecto 1)"
// @Param        currency     query  string  false  "Moneda"
// @Param        facility_id  query  string  false  "Bodega"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/costs/products/{id}/bom-simulation.pdf [get]
func (h *CostingHandler) BomCostSheetPDF(c *fiber.Ctx) error {
	in, err := h.simulationInput(c)
	if err != nil {
		return h.fail(c, err)
	}
	pdf, err := h.uc.BomCostSheetPDF(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="costo-`+in.ProductID+`.pdf"`)
	return c.Send(pdf)
}

// GetEstimatedTaskTime godoc
// @Summary      Tiempo estimado de una tarea
// @Tags         costs
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID de la tarea (work effort)"
// @Param        product_id  query  string  false  "Producto (para métodos personalizados)"
// @Param        routing_id  query  string  false  "Ruta"
// @Param        quantity    query  string  false  "Cantidad (<= 0 se toma como 1)"
// @Success      200  {object}  dto.TaskTimeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/costs/tasks/{id}/estimated-time [get]
func (h *CostingHandler) GetEstimatedTaskTime(c *fiber.Ctx) error {
	qty, err := queryDecimal(c, "quantity", "")
	if err != nil {
		return h.fail(c, err)
	}
	workEffortID := c.Params("id")
	tt, err := h.uc.GetEstimatedTaskTime(c.UserContext(), costing.TaskTimeInput{
		WorkEffortID: workEffortID,
		ProductID:    c.Query("product_id"),
		RoutingID:    c.Query("routing_id"),
		Quantity:     qty,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromTaskTime(workEffortID, tt))
}

// GetTaskCost godoc
// @Summary      Costo de una tarea de ruta
// @Tags         costs
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID de la tarea (work effort)"
// @Param        currency    query  string  false  "Moneda"
// @Param        product_id  query  string  false  "Producto"
// @Param        routing_id  query  string  false  "Ruta"
// @Success      200  {object}  dto.TaskCostResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/costs/tasks/{id}/cost [get]
func (h *CostingHandler) GetTaskCost(c *fiber.Ctx) error {
	currency := h.currency(c.Query("currency"))
	tc, err := h.uc.GetTaskCost(c.UserContext(), c.Params("id"), currency, c.Query("product_id"), c.Query("routing_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.FromTaskCost(currency, tc))
}

// UpdateAverageCostOnReceipt godoc
// @Summary      Registrar recepción y recalcular costo promedio
// @Tags         costs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiptRequest  true  "facility_id, quantity_accepted, product_id, inventory_item_id"
// @Success      201   {object}  dto.AverageCostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/costs/average-cost/receipts [post]
func (h *CostingHandler) UpdateAverageCostOnReceipt(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	avg, err := h.uc.UpdateAverageCostOnReceipt(c.UserContext(), in.ToReceiptInput())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAverageCost(avg))
}
