package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/application/production"
	"github.com/jhoicas/inventario-produccion/internal/application/purchasing"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-produccion/internal/interfaces/http"
	"github.com/jhoicas/inventario-produccion/pkg/config"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		repos repository.Repos
		tx    inventory.TxRunner
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		// Solo para desarrollo: el estado se pierde al reiniciar.
		store := memory.NewStore(cfg.DB.LockTimeout)
		repos, tx = store.Repos(), store
		log.Warn().Msg("usando almacén en memoria")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if _, err := postgres.Migrate(ctx, pool, log.Component("migrations")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		repos, tx = postgres.NewRepos(pool), postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	}

	ledger := inventory.NewStockLedger(repos, tx, log)
	deps := httpRouter.RouterDeps{
		Ledger:        ledger,
		Adjustments:   inventory.NewAdjustmentUseCase(repos, tx, ledger, log),
		Replenishment: inventory.NewReplenishmentUseCase(repos, cfg.Replenishment, log),
		BOM:           production.NewBOMUseCase(repos, tx, log),
		Planner:       production.NewPlannerUseCase(repos),
		Conferencer:   production.NewColorStockConferencer(repos, log),
		Orders:        production.NewOrderUseCase(repos, tx, ledger, log),
		Receiving:     purchasing.NewReceivingUseCase(repos, tx, ledger, log),
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		SwaggerFile: cfg.HTTP.SwaggerFile,
		MetricsPath: metricsPath,
	})
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
