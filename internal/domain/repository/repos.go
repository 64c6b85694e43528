package repository

// Repos agrupa los repositorios atados a una misma conexión o transacción.
type Repos struct {
	Items            ItemRepository
	Movements        StockMovementRepository
	Balances         StockBalanceRepository
	BOM              BOMRepository
	ProductionOrders ProductionOrderRepository
	PurchaseOrders   PurchaseOrderRepository
}
