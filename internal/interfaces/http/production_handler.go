package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-produccion/internal/application/dto"
	"github.com/jhoicas/inventario-produccion/internal/application/production"
)

// ProductionHandler recetas, planificación, conferencia por color y órdenes de producción.
type ProductionHandler struct {
	bom         *production.BOMUseCase
	planner     *production.PlannerUseCase
	conferencer *production.ColorStockConferencer
	orders      *production.OrderUseCase
}

// NewProductionHandler construye el handler.
func NewProductionHandler(bom *production.BOMUseCase, planner *production.PlannerUseCase, conferencer *production.ColorStockConferencer, orders *production.OrderUseCase) *ProductionHandler {
	return &ProductionHandler{bom: bom, planner: planner, conferencer: conferencer, orders: orders}
}

// GetBOM receta del ítem fabricado.
func (h *ProductionHandler) GetBOM(c *fiber.Ctx) error {
	itemID := c.Params("item_id")
	lines, err := h.bom.GetBOM(c.Context(), itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBOMResponse(itemID, lines))
}

// SetBOMLine godoc
// @Summary      Crear o actualizar línea de receta
// @Description  Rechaza autorreferencias, cantidades no positivas y líneas que cierran un ciclo.
// @Tags         bom
// @Accept       json
// @Produce      json
// @Param        item_id        path  string              true  "Ítem fabricado"
// @Param        ingredient_id  path  string              true  "Insumo"
// @Param        body           body  dto.BOMLineRequest  true  "quantity_per_unit"
// @Success      200  {object}  dto.BOMLineDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bom/{item_id}/lines/{ingredient_id} [put]
func (h *ProductionHandler) SetBOMLine(c *fiber.Ctx) error {
	var in dto.BOMLineRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	line, err := h.bom.SetLine(c.Context(), c.Params("item_id"), c.Params("ingredient_id"), in.QuantityPerUnit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BOMLineDTO{
		IngredientID:    line.IngredientID,
		QuantityPerUnit: line.QuantityPerUnit,
		Position:        line.Position,
	})
}

// RemoveBOMLine elimina una línea de la receta.
func (h *ProductionHandler) RemoveBOMLine(c *fiber.Ctx) error {
	if err := h.bom.RemoveLine(c.Context(), c.Params("item_id"), c.Params("ingredient_id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Producible godoc
// @Summary      Cantidad fabricable
// @Description  Mínimo de floor(saldo / cantidad por unidad) entre los insumos, con el insumo limitante.
// @Tags         production
// @Produce      json
// @Param        id        path   string  true   "Ítem fabricado"
// @Param        color_id  query  string  false  "Color de los insumos controlados por color"
// @Success      200  {object}  dto.ProducibleResponse
// @Router       /api/production/items/{id}/producible [get]
func (h *ProductionHandler) Producible(c *fiber.Ctx) error {
	res, err := h.planner.ProducibleQuantity(c.Context(), c.Params("id"), c.Query("color_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ProducibleResponse{ItemID: res.ItemID, ColorID: res.ColorID, Quantity: res.Quantity}
	if res.BottleneckID != "" {
		out.BottleneckID = &res.BottleneckID
	}
	return c.JSON(out)
}

// ColorCheck godoc
// @Summary      Conferir stock por color
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ColorCheckRequest  true  "color_id y requerimientos"
// @Success      200  {object}  dto.ColorCheckResponse
// @Router       /api/production/color-check [post]
func (h *ProductionHandler) ColorCheck(c *fiber.Ctx) error {
	var in dto.ColorCheckRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	reqs := make([]production.RequirementInput, 0, len(in.Requirements))
	for _, r := range in.Requirements {
		reqs = append(reqs, production.RequirementInput{ItemID: r.ItemID, Quantity: r.Quantity})
	}
	res, err := h.conferencer.Check(c.Context(), in.ColorID, reqs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toColorCheckResponse(res))
}

// OrderColorCheck confiere los insumos de una orden existente en su color.
func (h *ProductionHandler) OrderColorCheck(c *fiber.Ctx) error {
	res, err := h.conferencer.CheckOrder(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toColorCheckResponse(res))
}

// CreateOrder godoc
// @Summary      Crear orden de producción
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductionOrderRequest  true  "color_id, note, items"
// @Success      201  {object}  dto.ProductionOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/production/orders [post]
func (h *ProductionHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateProductionOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	items := make([]production.OrderItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, production.OrderItemInput{ItemID: it.ItemID, Role: it.Role, Quantity: it.Quantity})
	}
	order, err := h.orders.Create(c.Context(), production.CreateOrderInput{ColorID: in.ColorID, Note: in.Note, Items: items})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductionOrderResponse(order))
}

// GetOrder orden de producción con sus ítems.
func (h *ProductionHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductionOrderResponse(order))
}

// ListOrderItems ítems de la orden.
func (h *ProductionHandler) ListOrderItems(c *fiber.Ctx) error {
	items, err := h.orders.ListItems(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderItems(items))
}

// ExecuteOrder godoc
// @Summary      Ejecutar orden de producción
// @Description  Consume insumos y acredita producto terminado en una sola transacción.
// @Description  Si falta stock no escribe nada y responde 409 con el primer faltante.
// @Tags         production
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ProductionOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.InsufficientStockResponse
// @Router       /api/production/orders/{id}/execute [post]
func (h *ProductionHandler) ExecuteOrder(c *fiber.Ctx) error {
	order, err := h.orders.Execute(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductionOrderResponse(order))
}
