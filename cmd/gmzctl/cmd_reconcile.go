package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/infrastructure/postgres"
)

var errDiscrepancies = errors.New("el ledger tiene discrepancias")

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compara el stock agregado contra la suma de lotes",
	Long: `Recorre items y materias primas y reporta los SKU cuyo stock agregado
no coincide con la suma de cantidades restantes de sus lotes.

Termina con código distinto de cero si hay al menos una discrepancia.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := ledger.NewService(postgres.NewTxRunner(pool), postgres.Repositories(pool), nil, log.Named("ledger"))
	out, err := svc.Reconcile(ctx)
	if err != nil {
		return err
	}
	return printDiscrepancies(cmd.OutOrStdout(), out)
}

// printDiscrepancies escribe la tabla y devuelve errDiscrepancies si out no está vacío.
func printDiscrepancies(w io.Writer, out []ledger.Discrepancy) error {
	if len(out) == 0 {
		fmt.Fprintln(w, "ledger consistente")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIPO\tSKU\tNOMBRE\tAGREGADO\tLOTES\tDIFERENCIA")
	for _, d := range out {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Kind, d.SKUID, d.Name, d.Aggregate.String(), d.LedgerSum.String(), d.Difference().String())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return fmt.Errorf("%w: %d", errDiscrepancies, len(out))
}
