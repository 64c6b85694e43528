package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-produccion/pkg/config"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

// errDrift la auditoría encontró saldos que no cuadran con el libro.
var errDrift = errors.New("saldos descuadrados")

// environment dependencias de los comandos; las pruebas reemplazan open por el almacén en memoria.
type environment struct {
	cfg     *config.Config
	log     *logger.Logger
	open    func(ctx context.Context) (repository.Repos, inventory.TxRunner, func(), error)
	migrate func(ctx context.Context) ([]postgres.Migration, error)
}

func newRootCmd(env *environment) *cobra.Command {
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Operación del libro de inventario",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(env), newAuditCmd(env), newLowStockCmd(env))
	return root
}

func newMigrateCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, err := env.migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "esquema al día")
				return nil
			}
			for _, m := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "aplicada %03d %s\n", m.Version, m.Description)
			}
			return nil
		},
	}
}

func newAuditCmd(env *environment) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "audit [item_id...]",
		Short: "Compara el saldo materializado con la suma de movimientos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("indique ítems o use --all")
			}
			repos, tx, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ids := args
			if all {
				if ids, err = allItemIDs(cmd.Context(), repos); err != nil {
					return err
				}
			}
			ledger := inventory.NewStockLedger(repos, tx, env.log)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ITEM\tCOLOR\tLIBRO\tSALDO\tDIFERENCIA")
			drift := 0
			for _, id := range ids {
				report, err := ledger.Audit(cmd.Context(), id)
				if err != nil {
					return err
				}
				for _, r := range report.Rows {
					if r.Drift == 0 {
						continue
					}
					drift++
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", id, r.ColorID, r.Ledger, r.Materialized, r.Drift)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d ítems auditados, %d particiones descuadradas\n", len(ids), drift)
			if drift > 0 {
				return errDrift
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Audita todo el catálogo")
	return cmd
}

func allItemIDs(ctx context.Context, repos repository.Repos) ([]string, error) {
	const page = 200
	var ids []string
	for offset := 0; ; offset += page {
		items, err := repos.Items.List(ctx, page, offset)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		if len(items) < page {
			return ids, nil
		}
	}
}

func newLowStockCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "Lista los ítems en o bajo su mínimo con la cantidad sugerida",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repos, _, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := inventory.NewReplenishmentUseCase(repos, env.cfg.Replenishment, env.log).LowStockReport(cmd.Context())
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.LatinAmericanSpanish)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSKU\tSALDO\tMÍNIMO\tDÉFICIT\tPEDIR")
			for _, r := range rows {
				p.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n", r.Priority, r.SKU, r.CurrentStock, r.MinStock, r.Deficit, r.SuggestedOrderQty)
			}
			return w.Flush()
		},
	}
}
