package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-produccion/internal/application/dto"
	"github.com/jhoicas/inventario-produccion/internal/application/purchasing"
)

// PurchaseHandler órdenes de compra y recepciones.
type PurchaseHandler struct {
	uc *purchasing.ReceivingUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.ReceivingUseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  kind=received-directly registra las entradas al crearla.
// @Tags         purchasing
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id, kind, expected_at, lines"
// @Success      201  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]purchasing.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchasing.LineInput{
			ItemID:          l.ItemID,
			ColorID:         l.ColorID,
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
		})
	}
	order, err := h.uc.Create(c.Context(), purchasing.CreateInput{
		SupplierID: in.SupplierID,
		Kind:       in.Kind,
		ExpectedAt: in.ExpectedAt,
		Lines:      lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseOrderResponse(order))
}

// GetByID orden de compra con sus líneas.
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(order))
}

// Receive godoc
// @Summary      Registrar recepción
// @Description  Acumula lo recibido por línea. La sobre-recepción se acepta y se informa.
// @Tags         purchasing
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "receipts"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receipts [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	receipts := make([]purchasing.ReceiptInput, 0, len(in.Receipts))
	for _, r := range in.Receipts {
		receipts = append(receipts, purchasing.ReceiptInput{LineID: r.LineID, Quantity: r.Quantity})
	}
	res, err := h.uc.Receive(c.Context(), c.Params("id"), receipts)
	if err != nil {
		return writeError(c, err)
	}
	over := res.OverReceivedLines
	if over == nil {
		over = []string{}
	}
	return c.JSON(dto.ReceiptResponse{
		Order:             toPurchaseOrderResponse(res.Order),
		OverReceivedLines: over,
		MovementsRecorded: res.MovementsRecorded,
	})
}
