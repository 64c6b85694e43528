// Command stockctl tareas de operación sobre el núcleo de inventario: migraciones,
// auditoría del libro contra los saldos materializados y reporte de stock bajo.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-produccion/pkg/config"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "stockctl", Output: os.Stderr})

	env := &environment{
		cfg: cfg,
		log: log,
		open: func(ctx context.Context) (repository.Repos, inventory.TxRunner, func(), error) {
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return repository.Repos{}, nil, nil, err
			}
			return postgres.NewRepos(pool), postgres.NewTxRunner(pool, cfg.DB.LockTimeout), pool.Close, nil
		},
		migrate: func(ctx context.Context) ([]postgres.Migration, error) {
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return nil, err
			}
			defer pool.Close()
			return postgres.Migrate(ctx, pool, log.Component("migrations"))
		},
	}

	if err := newRootCmd(env).ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errDrift) {
			log.Error().Err(err).Msg("stockctl")
		}
		os.Exit(1)
	}
}
