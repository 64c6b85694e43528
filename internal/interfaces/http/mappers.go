package http

import (
	"github.com/jhoicas/inventario-produccion/internal/application/dto"
	"github.com/jhoicas/inventario-produccion/internal/application/production"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		ColorID:   m.ColorID,
		Quantity:  m.Quantity,
		Kind:      m.Kind,
		Origin:    m.Origin,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}

func toBOMResponse(itemID string, lines []entity.BOMLine) dto.BOMResponse {
	out := dto.BOMResponse{ItemID: itemID, Lines: make([]dto.BOMLineDTO, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.BOMLineDTO{
			IngredientID:    l.IngredientID,
			QuantityPerUnit: l.QuantityPerUnit,
			Position:        l.Position,
		})
	}
	return out
}

func toColorCheckResponse(r *production.ConferenceResult) dto.ColorCheckResponse {
	out := dto.ColorCheckResponse{
		ColorID:                   r.ColorID,
		Sufficient:                r.Sufficient,
		Shortages:                 make([]dto.ShortageDTO, 0, len(r.Shortages)),
		ColorsWithSufficientStock: r.ColorsWithSufficientStock,
	}
	if out.ColorsWithSufficientStock == nil {
		out.ColorsWithSufficientStock = []string{}
	}
	for _, s := range r.Shortages {
		out.Shortages = append(out.Shortages, dto.ShortageDTO{
			ItemID:           s.ItemID,
			Required:         s.Required,
			AvailableInColor: s.AvailableInColor,
		})
	}
	return out
}

func toOrderItems(items []entity.ProductionOrderItem) []dto.OrderItemDTO {
	out := make([]dto.OrderItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.OrderItemDTO{
			ID:       it.ID,
			ItemID:   it.ItemID,
			Role:     it.Role,
			Quantity: it.Quantity,
			Position: it.Position,
		})
	}
	return out
}

func toProductionOrderResponse(o *entity.ProductionOrder) dto.ProductionOrderResponse {
	return dto.ProductionOrderResponse{
		ID:          o.ID,
		ColorID:     o.ColorID,
		Status:      o.Status,
		Note:        o.Note,
		Items:       toOrderItems(o.Items),
		CreatedAt:   o.CreatedAt,
		CompletedAt: o.CompletedAt,
	}
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	out := dto.PurchaseOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Kind:       o.Kind,
		Status:     o.Status,
		ExpectedAt: o.ExpectedAt,
		Lines:      make([]dto.PurchaseLineDTO, 0, len(o.Lines)),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.PurchaseLineDTO{
			ID:               l.ID,
			ItemID:           l.ItemID,
			ColorID:          l.ColorID,
			OrderedQuantity:  l.OrderedQuantity,
			ReceivedQuantity: l.ReceivedQuantity,
			UnitPrice:        l.UnitPrice,
			OverReceived:     l.OverReceived(),
		})
	}
	return out
}
