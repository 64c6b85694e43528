package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

func reposFor(v *view) repository.Repos {
	return repository.Repos{
		Items:            &itemRepo{v},
		Movements:        &movementRepo{v},
		Balances:         &balanceRepo{v},
		BOM:              &bomRepo{v},
		ProductionOrders: &productionOrderRepo{v},
		PurchaseOrders:   &purchaseOrderRepo{v},
	}
}

var (
	_ repository.ItemRepository            = (*itemRepo)(nil)
	_ repository.StockMovementRepository   = (*movementRepo)(nil)
	_ repository.StockBalanceRepository    = (*balanceRepo)(nil)
	_ repository.BOMRepository             = (*bomRepo)(nil)
	_ repository.ProductionOrderRepository = (*productionOrderRepo)(nil)
	_ repository.PurchaseOrderRepository   = (*purchaseOrderRepo)(nil)
)

// ── Ítems ─────────────────────────────────────────────────────────────────────

type itemRepo struct{ v *view }

func (r *itemRepo) Create(_ context.Context, item *entity.Item) error {
	var exists bool
	r.v.read(func(s *state) { _, exists = s.items[item.ID] })
	if exists {
		return fmt.Errorf("ítem %s: %w", item.ID, domain.ErrConflict)
	}
	cp := *item
	r.v.write(func(s *state) {
		s.items[cp.ID] = &cp
		s.itemOrder = append(s.itemOrder, cp.ID)
	})
	return nil
}

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	r.v.read(func(s *state) {
		if it, ok := s.items[id]; ok {
			cp := *it
			out = &cp
		}
	})
	return out, nil
}

func (r *itemRepo) GetMany(_ context.Context, ids []string) (map[string]*entity.Item, error) {
	out := make(map[string]*entity.Item, len(ids))
	r.v.read(func(s *state) {
		for _, id := range ids {
			if it, ok := s.items[id]; ok {
				cp := *it
				out[id] = &cp
			}
		}
	})
	return out, nil
}

func (r *itemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	r.v.read(func(s *state) {
		for i := offset; i < len(s.itemOrder) && (limit <= 0 || len(out) < limit); i++ {
			cp := *s.items[s.itemOrder[i]]
			out = append(out, &cp)
		}
	})
	return out, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	cp := *m
	r.v.write(func(s *state) { s.movements = append(s.movements, cp) })
	return nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var matched []entity.StockMovement
	r.v.read(func(s *state) {
		for _, m := range s.movements {
			if matches(m, f) {
				matched = append(matched, m)
			}
		}
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	out := []*entity.StockMovement{}
	for i := f.Offset; i < len(matched) && (f.Limit <= 0 || len(out) < f.Limit); i++ {
		m := matched[i]
		out = append(out, &m)
	}
	return out, nil
}

func (r *movementRepo) Count(_ context.Context, f repository.MovementFilter) (int, error) {
	n := 0
	r.v.read(func(s *state) {
		for _, m := range s.movements {
			if matches(m, f) {
				n++
			}
		}
	})
	return n, nil
}

func matches(m entity.StockMovement, f repository.MovementFilter) bool {
	switch {
	case f.ItemID != "" && m.ItemID != f.ItemID:
		return false
	case f.ColorID != "" && m.ColorID != f.ColorID:
		return false
	case f.Kind != "" && m.Kind != f.Kind:
		return false
	case f.Origin != "" && m.Origin != f.Origin:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}

func (r *movementRepo) SumByColor(_ context.Context, itemID string) ([]entity.StockBalance, error) {
	sums := make(map[string]int64)
	var colors []string
	r.v.read(func(s *state) {
		for _, m := range s.movements {
			if m.ItemID != itemID {
				continue
			}
			if _, ok := sums[m.ColorID]; !ok {
				colors = append(colors, m.ColorID)
			}
			sums[m.ColorID] += m.Quantity
		}
	})
	sort.Strings(colors)
	out := make([]entity.StockBalance, 0, len(colors))
	for _, c := range colors {
		out = append(out, entity.StockBalance{ItemID: itemID, ColorID: c, Quantity: sums[c]})
	}
	return out, nil
}

func (r *movementRepo) Consumption(_ context.Context, itemID string, since time.Time) (repository.ConsumptionStats, error) {
	var stats repository.ConsumptionStats
	r.v.read(func(s *state) {
		for _, m := range s.movements {
			if m.ItemID != itemID {
				continue
			}
			if stats.FirstMovementAt == nil || m.CreatedAt.Before(*stats.FirstMovementAt) {
				t := m.CreatedAt
				stats.FirstMovementAt = &t
			}
			if m.Quantity < 0 && !m.CreatedAt.Before(since) &&
				(m.Kind == entity.MovementKindOutbound || m.Kind == entity.MovementKindProduction) {
				stats.Consumed += -m.Quantity
			}
		}
	})
	return stats, nil
}

// ── Saldos ────────────────────────────────────────────────────────────────────

type balanceRepo struct{ v *view }

func (r *balanceRepo) Get(_ context.Context, key entity.StockKey) (int64, error) {
	var q int64
	r.v.read(func(s *state) { q = s.balances[key].Quantity })
	return q, nil
}

func (r *balanceRepo) Total(_ context.Context, itemID string) (int64, error) {
	var total int64
	r.v.read(func(s *state) {
		for k, b := range s.balances {
			if k.ItemID == itemID {
				total += b.Quantity
			}
		}
	})
	return total, nil
}

func (r *balanceRepo) ListByItem(_ context.Context, itemID string) ([]entity.StockBalance, error) {
	out := []entity.StockBalance{}
	r.v.read(func(s *state) {
		for k, b := range s.balances {
			if k.ItemID == itemID {
				out = append(out, b)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ColorID < out[j].ColorID })
	return out, nil
}

func (r *balanceRepo) Add(_ context.Context, key entity.StockKey, delta int64, at time.Time) (int64, error) {
	r.v.write(func(s *state) {
		b := s.balances[key]
		b.ItemID, b.ColorID = key.ItemID, key.ColorID
		b.Quantity += delta
		b.UpdatedAt = at
		s.balances[key] = b
	})
	var q int64
	r.v.read(func(s *state) { q = s.balances[key].Quantity })
	return q, nil
}

// ── Recetas ───────────────────────────────────────────────────────────────────

type bomRepo struct{ v *view }

func (r *bomRepo) Upsert(_ context.Context, line *entity.BOMLine) error {
	cp := *line
	r.v.write(func(s *state) {
		lines := s.bom[cp.ManufacturedID]
		for i := range lines {
			if lines[i].IngredientID == cp.IngredientID {
				lines[i].QuantityPerUnit = cp.QuantityPerUnit
				return
			}
		}
		s.bomSeq++
		l := cp
		l.Position = s.bomSeq
		s.bom[cp.ManufacturedID] = append(lines, l)
	})
	r.v.read(func(s *state) {
		for _, l := range s.bom[cp.ManufacturedID] {
			if l.IngredientID == cp.IngredientID {
				line.Position = l.Position
			}
		}
	})
	return nil
}

func (r *bomRepo) Delete(_ context.Context, manufacturedID, ingredientID string) (bool, error) {
	var found bool
	r.v.read(func(s *state) {
		for _, l := range s.bom[manufacturedID] {
			if l.IngredientID == ingredientID {
				found = true
			}
		}
	})
	if !found {
		return false, nil
	}
	r.v.write(func(s *state) {
		lines := s.bom[manufacturedID]
		kept := make([]entity.BOMLine, 0, len(lines))
		for _, l := range lines {
			if l.IngredientID != ingredientID {
				kept = append(kept, l)
			}
		}
		s.bom[manufacturedID] = kept
	})
	return true, nil
}

func (r *bomRepo) ListByManufactured(_ context.Context, manufacturedID string) ([]entity.BOMLine, error) {
	var out []entity.BOMLine
	r.v.read(func(s *state) { out = append([]entity.BOMLine(nil), s.bom[manufacturedID]...) })
	return out, nil
}

// ── Órdenes de producción ─────────────────────────────────────────────────────

type productionOrderRepo struct{ v *view }

func (r *productionOrderRepo) Create(_ context.Context, o *entity.ProductionOrder) error {
	var exists bool
	r.v.read(func(s *state) { _, exists = s.production[o.ID] })
	if exists {
		return fmt.Errorf("orden de producción %s: %w", o.ID, domain.ErrConflict)
	}
	cp := cloneProductionOrder(o)
	r.v.write(func(s *state) { s.production[cp.ID] = cloneProductionOrder(cp) })
	return nil
}

func (r *productionOrderRepo) GetByID(_ context.Context, id string) (*entity.ProductionOrder, error) {
	var out *entity.ProductionOrder
	r.v.read(func(s *state) {
		if o, ok := s.production[id]; ok {
			out = cloneProductionOrder(o)
		}
	})
	return out, nil
}

// GetForUpdate la clave de bloqueo de la orden ya serializa el acceso.
func (r *productionOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *productionOrderRepo) UpdateStatus(_ context.Context, id, status string, completedAt *time.Time) error {
	var exists bool
	r.v.read(func(s *state) { _, exists = s.production[id] })
	if !exists {
		return domain.NotFound("orden de producción", id)
	}
	var at *time.Time
	if completedAt != nil {
		t := *completedAt
		at = &t
	}
	r.v.write(func(s *state) {
		o := s.production[id]
		o.Status = status
		o.CompletedAt = at
	})
	return nil
}

// ── Órdenes de compra ─────────────────────────────────────────────────────────

type purchaseOrderRepo struct{ v *view }

func (r *purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	var exists bool
	r.v.read(func(s *state) { _, exists = s.purchase[o.ID] })
	if exists {
		return fmt.Errorf("orden de compra %s: %w", o.ID, domain.ErrConflict)
	}
	cp := clonePurchaseOrder(o)
	r.v.write(func(s *state) { s.purchase[cp.ID] = clonePurchaseOrder(cp) })
	return nil
}

func (r *purchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	r.v.read(func(s *state) {
		if o, ok := s.purchase[id]; ok {
			out = clonePurchaseOrder(o)
		}
	})
	return out, nil
}

func (r *purchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseOrderRepo) SaveReceipt(_ context.Context, o *entity.PurchaseOrder) error {
	var exists bool
	r.v.read(func(s *state) { _, exists = s.purchase[o.ID] })
	if !exists {
		return domain.NotFound("orden de compra", o.ID)
	}
	received := make(map[string]int64, len(o.Lines))
	for _, l := range o.Lines {
		received[l.ID] = l.ReceivedQuantity
	}
	status, updatedAt := o.Status, o.UpdatedAt
	r.v.write(func(s *state) {
		stored := s.purchase[o.ID]
		for i := range stored.Lines {
			if q, ok := received[stored.Lines[i].ID]; ok {
				stored.Lines[i].ReceivedQuantity = q
			}
		}
		stored.Status = status
		stored.UpdatedAt = updatedAt
	})
	return nil
}
