package production_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/application/production"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

type fixture struct {
	ctx        context.Context
	repos      repository.Repos
	ledger     *appinv.StockLedger
	bom        *production.BOMUseCase
	planner    *production.PlannerUseCase
	orders     *production.OrderUseCase
	conference *production.ColorStockConferencer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(2 * time.Second)
	repos := store.Repos()
	log := logger.NewNop()
	ledger := appinv.NewStockLedger(repos, store, log)
	return &fixture{
		ctx:        context.Background(),
		repos:      repos,
		ledger:     ledger,
		bom:        production.NewBOMUseCase(repos, store, log),
		planner:    production.NewPlannerUseCase(repos),
		orders:     production.NewOrderUseCase(repos, store, ledger, log),
		conference: production.NewColorStockConferencer(repos, log),
	}
}

func (f *fixture) raw(t *testing.T, id string, tracked bool) {
	t.Helper()
	require.NoError(t, f.repos.Items.Create(f.ctx, &entity.Item{
		ID: id, SKU: id, Name: id, Category: entity.CategoryRawMaterial, TrackedByColor: tracked,
	}))
}

func (f *fixture) manufactured(t *testing.T, id, kind string) {
	t.Helper()
	require.NoError(t, f.repos.Items.Create(f.ctx, &entity.Item{
		ID: id, SKU: id, Name: id, Category: entity.CategoryManufactured, ManufacturedKind: kind,
	}))
}

func (f *fixture) line(t *testing.T, manufactured, ingredient, qty string) {
	t.Helper()
	_, err := f.bom.SetLine(f.ctx, manufactured, ingredient, decimal.RequireFromString(qty))
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, item string, qty int64, color string) {
	t.Helper()
	_, err := f.ledger.Record(f.ctx, appinv.RecordInput{ItemID: item, Quantity: qty, Kind: entity.MovementKindInbound, ColorID: color})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, item, color string) int64 {
	t.Helper()
	b, err := f.ledger.Balance(f.ctx, item, color)
	require.NoError(t, err)
	return b
}

// furniture MESA = 1 TABLA + 8 TORNILLO; SILLA = 4 TORNILLO + 0.5 TELA (por color); COMEDOR kit.
func furniture(t *testing.T) *fixture {
	f := newFixture(t)
	f.raw(t, "TABLA", false)
	f.raw(t, "TORNILLO", false)
	f.raw(t, "TELA", true)
	f.manufactured(t, "MESA", entity.ManufacturedKindStandard)
	f.manufactured(t, "SILLA", entity.ManufacturedKindStandard)
	f.manufactured(t, "COMEDOR", entity.ManufacturedKindKit)
	f.line(t, "MESA", "TABLA", "1")
	f.line(t, "MESA", "TORNILLO", "8")
	f.line(t, "SILLA", "TORNILLO", "4")
	f.line(t, "SILLA", "TELA", "0.5")
	return f
}

func comedorOrder(color string) production.CreateOrderInput {
	return production.CreateOrderInput{
		ColorID: color,
		Items: []production.OrderItemInput{
			{ItemID: "MESA", Role: entity.OrderItemRoleManufactured, Quantity: 2},
			{ItemID: "SILLA", Role: entity.OrderItemRoleManufactured, Quantity: 3},
			{ItemID: "COMEDOR", Role: entity.OrderItemRoleKit, Quantity: 1},
		},
	}
}

func TestPlanner_CuelloDeBotella(t *testing.T) {
	f := newFixture(t)
	f.raw(t, "A", false)
	f.raw(t, "B", false)
	f.manufactured(t, "X", entity.ManufacturedKindStandard)
	f.line(t, "X", "A", "2")
	f.line(t, "X", "B", "1")
	f.stock(t, "A", 10, "")
	f.stock(t, "B", 7, "")

	res, err := f.planner.ProducibleQuantity(f.ctx, "X", "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Quantity)
	assert.Equal(t, "A", res.BottleneckID)

	movs, _ := f.ledger.ListMovements(f.ctx, repository.MovementFilter{})
	assert.Len(t, movs, 2, "el planificador no escribe en el libro")
}

func TestPlanner_SinReceta(t *testing.T) {
	f := newFixture(t)
	f.manufactured(t, "X", entity.ManufacturedKindStandard)

	res, err := f.planner.ProducibleQuantity(f.ctx, "X", "")
	require.NoError(t, err)
	assert.Zero(t, res.Quantity)
	assert.Empty(t, res.BottleneckID)
}

func TestPlanner_PorColor(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TORNILLO", 100, "")
	f.stock(t, "TELA", 3, "rojo")
	f.stock(t, "TELA", 10, "azul")

	rojo, err := f.planner.ProducibleQuantity(f.ctx, "SILLA", "rojo")
	require.NoError(t, err)
	assert.Equal(t, int64(6), rojo.Quantity, "3 / 0.5")
	assert.Equal(t, "TELA", rojo.BottleneckID)

	total, err := f.planner.ProducibleQuantity(f.ctx, "SILLA", "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), total.Quantity, "100 / 4 con 13 de tela en total")
	assert.Equal(t, "TORNILLO", total.BottleneckID)
}

func TestBOM_Validaciones(t *testing.T) {
	f := furniture(t)

	_, err := f.bom.SetLine(f.ctx, "MESA", "MESA", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "autorreferencia")

	_, err = f.bom.SetLine(f.ctx, "MESA", "TABLA", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = f.bom.SetLine(f.ctx, "TABLA", "TORNILLO", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una materia prima no tiene receta")

	_, err = f.bom.SetLine(f.ctx, "MESA", "COMEDOR", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un kit no es insumo")

	_, err = f.bom.SetLine(f.ctx, "MESA", "NOPE", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.bom.RemoveLine(f.ctx, "MESA", "TELA")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	lines, err := f.bom.GetBOM(f.ctx, "MESA")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "TABLA", lines[0].IngredientID)
	assert.Equal(t, "TORNILLO", lines[1].IngredientID)
}

func TestBOM_RechazaCiclos(t *testing.T) {
	f := newFixture(t)
	f.manufactured(t, "A", entity.ManufacturedKindStandard)
	f.manufactured(t, "B", entity.ManufacturedKindStandard)
	f.manufactured(t, "C", entity.ManufacturedKindStandard)
	f.line(t, "A", "B", "1")
	f.line(t, "B", "C", "2")

	_, err := f.bom.SetLine(f.ctx, "C", "A", decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "C -> A -> B -> C")

	lines, _ := f.bom.GetBOM(f.ctx, "C")
	assert.Empty(t, lines)
}

func TestCreateOrder_Validaciones(t *testing.T) {
	f := furniture(t)

	cases := []struct {
		name string
		in   production.CreateOrderInput
		want error
	}{
		{"sin ítems", production.CreateOrderInput{}, domain.ErrInvalidInput},
		{"solo kit", production.CreateOrderInput{Items: []production.OrderItemInput{{ItemID: "COMEDOR", Role: entity.OrderItemRoleKit, Quantity: 1}}}, domain.ErrInvalidInput},
		{"rol kit en ítem fabricado", production.CreateOrderInput{Items: []production.OrderItemInput{
			{ItemID: "MESA", Role: entity.OrderItemRoleManufactured, Quantity: 1},
			{ItemID: "SILLA", Role: entity.OrderItemRoleKit, Quantity: 1},
		}}, domain.ErrInvalidInput},
		{"materia prima como fabricado", production.CreateOrderInput{Items: []production.OrderItemInput{{ItemID: "TABLA", Role: entity.OrderItemRoleManufactured, Quantity: 1}}}, domain.ErrInvalidInput},
		{"cantidad cero", production.CreateOrderInput{Items: []production.OrderItemInput{{ItemID: "MESA", Role: entity.OrderItemRoleManufactured}}}, domain.ErrInvalidInput},
		{"ítem inexistente", production.CreateOrderInput{Items: []production.OrderItemInput{{ItemID: "NOPE", Role: entity.OrderItemRoleManufactured, Quantity: 1}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.Create(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestExecute_ConsumeYAcredita(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TABLA", 5, "")
	f.stock(t, "TORNILLO", 30, "")
	f.stock(t, "TELA", 2, "rojo")
	f.stock(t, "TELA", 9, "azul")

	order, err := f.orders.Create(f.ctx, comedorOrder("rojo"))
	require.NoError(t, err)
	assert.Equal(t, entity.ProductionStatusPending, order.Status)

	done, err := f.orders.Execute(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductionStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	assert.Equal(t, int64(3), f.balance(t, "TABLA", ""))
	assert.Equal(t, int64(2), f.balance(t, "TORNILLO", ""), "2*8 + 3*4 = 28 en un solo consumo")
	assert.Equal(t, int64(0), f.balance(t, "TELA", "rojo"), "1.5 se redondea a 2")
	assert.Equal(t, int64(9), f.balance(t, "TELA", "azul"), "otros colores no se tocan")
	assert.Equal(t, int64(2), f.balance(t, "MESA", ""))
	assert.Equal(t, int64(3), f.balance(t, "SILLA", ""))
	assert.Equal(t, int64(0), f.balance(t, "COMEDOR", ""))

	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{Origin: order.ID})
	require.NoError(t, err)
	assert.Len(t, movs, 5, "tres consumos y dos entradas; el kit no mueve stock")
	for _, m := range movs {
		assert.Equal(t, entity.MovementKindProduction, m.Kind)
		assert.NotEqual(t, "COMEDOR", m.ItemID)
	}

	_, err = f.orders.Execute(f.ctx, order.ID)
	var state *domain.InvalidStateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, entity.ProductionStatusCompleted, state.Status)
}

func TestExecute_FaltanteNoDejaEfectos(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TABLA", 5, "")
	f.stock(t, "TORNILLO", 20, "")
	f.stock(t, "TELA", 5, "rojo")

	order, err := f.orders.Create(f.ctx, comedorOrder("rojo"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.orders.Execute(f.ctx, order.ID)
		var short *domain.InsufficientStockError
		require.ErrorAs(t, err, &short, "intento %d", i+1)
		assert.Equal(t, "TORNILLO", short.ItemID)
		assert.Equal(t, int64(28), short.Required)
		assert.Equal(t, int64(20), short.Available)

		movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{Origin: order.ID})
		require.NoError(t, err)
		assert.Empty(t, movs, "ningún movimiento referencia la orden")

		got, err := f.orders.Get(f.ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ProductionStatusPending, got.Status)
	}
	assert.Equal(t, int64(5), f.balance(t, "TABLA", ""))
	assert.Equal(t, int64(20), f.balance(t, "TORNILLO", ""))
}

func TestExecute_RequerimientoFueraDeRangoNoAcredita(t *testing.T) {
	f := newFixture(t)
	f.raw(t, "TORNILLO", false)
	f.manufactured(t, "CAJA", entity.ManufacturedKindStandard)
	f.line(t, "CAJA", "TORNILLO", "8")
	f.stock(t, "TORNILLO", 10, "")

	_, err := f.orders.Create(f.ctx, production.CreateOrderInput{
		Items: []production.OrderItemInput{{ItemID: "CAJA", Role: entity.OrderItemRoleManufactured, Quantity: 1<<61 + 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la cantidad ordenada tiene tope")

	// Dentro del tope por orden, pero 8 por unidad desborda el tope del requerimiento.
	order, err := f.orders.Create(f.ctx, production.CreateOrderInput{
		Items: []production.OrderItemInput{{ItemID: "CAJA", Role: entity.OrderItemRoleManufactured, Quantity: entity.MaxQuantity}},
	})
	require.NoError(t, err)

	_, err = f.orders.Execute(f.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(10), f.balance(t, "TORNILLO", ""))
	assert.Zero(t, f.balance(t, "CAJA", ""), "sin insumos no hay producto terminado")

	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{Origin: order.ID})
	require.NoError(t, err)
	assert.Empty(t, movs)

	_, err = f.conference.CheckOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecute_FabricadoSinRecetaSeRechaza(t *testing.T) {
	f := newFixture(t)
	f.manufactured(t, "CAJA", entity.ManufacturedKindStandard)

	order, err := f.orders.Create(f.ctx, production.CreateOrderInput{
		Items: []production.OrderItemInput{{ItemID: "CAJA", Role: entity.OrderItemRoleManufactured, Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = f.orders.Execute(f.ctx, order.ID)
	var invalid *domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "items", invalid.Field)
	assert.Zero(t, f.balance(t, "CAJA", ""), "no se acredita producto sin consumo")

	got, err := f.orders.Get(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductionStatusPending, got.Status)
}

func TestExecute_InsumoPorColorExigeColor(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TORNILLO", 100, "")
	f.stock(t, "TELA", 10, "rojo")

	order, err := f.orders.Create(f.ctx, production.CreateOrderInput{
		Items: []production.OrderItemInput{{ItemID: "SILLA", Role: entity.OrderItemRoleManufactured, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.orders.Execute(f.ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecute_ConcurrenteSobreInsumoCompartido(t *testing.T) {
	f := newFixture(t)
	f.raw(t, "A", false)
	f.manufactured(t, "X", entity.ManufacturedKindStandard)
	f.line(t, "X", "A", "1")
	f.stock(t, "A", 10, "")

	var ids []string
	for i := 0; i < 2; i++ {
		o, err := f.orders.Create(f.ctx, production.CreateOrderInput{
			Items: []production.OrderItemInput{{ItemID: "X", Role: entity.OrderItemRoleManufactured, Quantity: 6}},
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.orders.Execute(f.ctx, id)
		}(i, id)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "solo una orden puede consumir el insumo")
	assert.Equal(t, 1, short)
	assert.Equal(t, int64(4), f.balance(t, "A", ""))
	assert.Equal(t, int64(6), f.balance(t, "X", ""))
}

func TestColorCheck_SugiereColores(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TORNILLO", 100, "")
	f.stock(t, "TELA", 1, "rojo")
	f.stock(t, "TELA", 5, "azul")
	f.stock(t, "TELA", 2, "verde")

	res, err := f.conference.Check(f.ctx, "rojo", []production.RequirementInput{{ItemID: "SILLA", Quantity: 4}})
	require.NoError(t, err)
	assert.False(t, res.Sufficient)
	require.Len(t, res.Shortages, 1)
	assert.Equal(t, production.Shortage{ItemID: "TELA", Required: 2, AvailableInColor: 1}, res.Shortages[0])
	assert.Equal(t, []string{"azul", "verde"}, res.ColorsWithSufficientStock)

	ok, err := f.conference.Check(f.ctx, "azul", []production.RequirementInput{{ItemID: "SILLA", Quantity: 4}, {ItemID: "TELA", Quantity: 3}})
	require.NoError(t, err)
	assert.True(t, ok.Sufficient, "2 de la silla + 3 directos = 5 en azul")
	assert.Empty(t, ok.Shortages)

	movs, _ := f.ledger.ListMovements(f.ctx, repository.MovementFilter{})
	assert.Len(t, movs, 4, "la conferencia no escribe en el libro")
}

func TestColorCheck_FaltanteSinColorNoSugiere(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TORNILLO", 3, "")
	f.stock(t, "TELA", 5, "azul")

	res, err := f.conference.Check(f.ctx, "azul", []production.RequirementInput{{ItemID: "SILLA", Quantity: 1}})
	require.NoError(t, err)
	assert.False(t, res.Sufficient)
	assert.Equal(t, "TORNILLO", res.Shortages[0].ItemID)
	assert.Empty(t, res.ColorsWithSufficientStock, "cambiar de color no cubre un insumo sin color")
}

func TestColorCheck_Orden(t *testing.T) {
	f := furniture(t)
	f.stock(t, "TABLA", 5, "")
	f.stock(t, "TORNILLO", 30, "")
	f.stock(t, "TELA", 1, "rojo")
	f.stock(t, "TELA", 4, "azul")

	order, err := f.orders.Create(f.ctx, comedorOrder("rojo"))
	require.NoError(t, err)

	res, err := f.conference.CheckOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, res.Sufficient)
	assert.Equal(t, []string{"azul"}, res.ColorsWithSufficientStock)

	noColor, err := f.orders.Create(f.ctx, production.CreateOrderInput{
		Items: []production.OrderItemInput{{ItemID: "MESA", Role: entity.OrderItemRoleManufactured, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.conference.CheckOrder(f.ctx, noColor.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
