package postgres

import "github.com/jhoicas/inventario-produccion/internal/domain/repository"

// NewRepos agrupa los adaptadores sobre el mismo Querier (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Items:            NewItemRepository(q),
		Movements:        NewStockMovementRepository(q),
		Balances:         NewStockBalanceRepository(q),
		BOM:              NewBOMRepository(q),
		ProductionOrders: NewProductionOrderRepository(q),
		PurchaseOrders:   NewPurchaseOrderRepository(q),
	}
}
