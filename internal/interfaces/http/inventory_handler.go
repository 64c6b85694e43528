package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-produccion/internal/application/dto"
	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

// InventoryHandler libro de movimientos, saldos, ajustes y reposición.
type InventoryHandler struct {
	ledger        *inventory.StockLedger
	adjustments   *inventory.AdjustmentUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger, adjustments *inventory.AdjustmentUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, adjustments: adjustments, replenishment: replenishment}
}

// ListMovements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         inventory
// @Produce      json
// @Param        item_id   query  string  false  "Ítem"
// @Param        color_id  query  string  false  "Color"
// @Param        kind      query  string  false  "inbound, outbound, adjustment, production"
// @Param        origin    query  string  false  "Orden u origen del movimiento"
// @Param        from      query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to        query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusivo)"
// @Param        limit     query  int     false  "Límite"  default(100)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, domain.Invalid("query", "parámetros inválidos"))
	}
	if err := dto.Validate(&q); err != nil {
		return writeError(c, err)
	}
	filter := repository.MovementFilter{
		ItemID:  q.ItemID,
		ColorID: q.ColorID,
		Kind:    q.Kind,
		Origin:  q.Origin,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
	var err error
	if filter.From, err = parseDate("from", q.From, false); err != nil {
		return writeError(c, err)
	}
	if filter.To, err = parseDate("to", q.To, true); err != nil {
		return writeError(c, err)
	}

	page, err := h.ledger.Page(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(page.Movements))
	for _, m := range page.Movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	})
}

// parseDate acepta RFC3339 o YYYY-MM-DD; una fecha sin hora como límite superior cubre el día entero.
func parseDate(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.Invalid(field, "formato de fecha inválido")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// Adjust godoc
// @Summary      Registrar ajuste manual
// @Description  La cantidad lleva signo; el ajuste puede dejar el saldo negativo.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "item_id, quantity, color_id, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := h.adjustments.Adjust(c.Context(), inventory.AdjustInput{
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
		ColorID:  in.ColorID,
		Note:     in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// Outbound godoc
// @Summary      Registrar salida (venta o despacho)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OutboundRequest  true  "item_id, quantity (positiva), color_id, origin"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/outbound [post]
func (h *InventoryHandler) Outbound(c *fiber.Ctx) error {
	var in dto.OutboundRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := h.adjustments.Dispatch(c.Context(), inventory.DispatchInput{
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
		ColorID:  in.ColorID,
		Origin:   in.Origin,
		Note:     in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// Reconcile godoc
// @Summary      Conciliar contra conteo físico
// @Description  Cada fila se procesa por separado; las filas con error no detienen el lote.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  true  "Filas item_id, color_id, counted_balance"
// @Success      200   {object}  dto.ReconcileResponse
// @Router       /api/inventory/reconciliations [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	rows := make([]inventory.ReconcileRow, 0, len(in.Items))
	for _, r := range in.Items {
		rows = append(rows, inventory.ReconcileRow{ItemID: r.ItemID, ColorID: r.ColorID, CountedBalance: r.CountedBalance})
	}
	res := h.adjustments.Reconcile(c.Context(), rows)
	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return c.JSON(dto.ReconcileResponse{ProcessedCount: res.ProcessedCount, Errors: errs})
}

// Balance saldo total del ítem o de un color (?color_id=).
func (h *InventoryHandler) Balance(c *fiber.Ctx) error {
	itemID, colorID := c.Params("id"), c.Query("color_id")
	q, err := h.ledger.Balance(c.Context(), itemID, colorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BalanceResponse{ItemID: itemID, ColorID: colorID, Quantity: q})
}

// BalancesByColor saldo por cada color del ítem.
func (h *InventoryHandler) BalancesByColor(c *fiber.Ctx) error {
	itemID := c.Params("id")
	balances, err := h.ledger.BalancesByColor(c.Context(), itemID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ColorBalanceDTO, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.ColorBalanceDTO{ColorID: b.ColorID, Quantity: b.Quantity})
	}
	return c.JSON(fiber.Map{"item_id": itemID, "balances": out})
}

// Audit godoc
// @Summary      Auditar saldo contra el libro
// @Description  Recalcula el saldo sumando movimientos y lo compara con el saldo materializado.
// @Tags         inventory
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.AuditResponse
// @Router       /api/inventory/items/{id}/audit [get]
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	report, err := h.ledger.Audit(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AuditResponse{
		ItemID:   report.ItemID,
		Balanced: report.Balanced,
		Total:    report.Total,
		Rows:     make([]dto.AuditRowDTO, 0, len(report.Rows)),
	}
	for _, r := range report.Rows {
		out.Rows = append(out.Rows, dto.AuditRowDTO{
			ColorID:      r.ColorID,
			Ledger:       r.Ledger,
			Materialized: r.Materialized,
			Drift:        r.Drift,
		})
	}
	return c.JSON(out)
}

// SuggestThresholds godoc
// @Summary      Sugerir mínimo y máximo
// @Tags         inventory
// @Produce      json
// @Param        id             path   string  true   "ID del ítem"
// @Param        lookback_days  query  int     false  "Ventana de consumo en días (0 = configurada)"
// @Success      200  {object}  dto.ThresholdSuggestionDTO
// @Router       /api/inventory/items/{id}/replenishment [get]
func (h *InventoryHandler) SuggestThresholds(c *fiber.Ctx) error {
	out, err := h.replenishment.SuggestThresholds(c.Context(), c.Params("id"), c.QueryInt("lookback_days", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Reporte de stock bajo
// @Description  Ítems en o bajo su mínimo, del mayor déficit al menor, con cantidad sugerida de pedido.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.LowStockReport(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []dto.ReplenishmentSuggestionDTO{}
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
