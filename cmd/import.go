package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/db"
	"github.com/sells-group/retail-presence/internal/store"
	"github.com/sells-group/retail-presence/internal/table"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Publish both datasets into Postgres tables",
	Long:  "Loads the configured board and POSM sources and replaces the Postgres tables named in import config. Serve can then read them with postgres://...#table sources.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		board, posm, err := openSources(cfg)
		if err != nil {
			return err
		}
		st := store.New(board, posm, store.Options{StrictColumns: cfg.Data.StrictColumns})
		defer st.Close() //nolint:errcheck

		snap, err := st.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "import: load")
		}

		pool, err := db.Open(ctx, cfg.Import.DatabaseURL, nil)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := importTable(ctx, pool, cfg.Import.BoardTable, snap.Board); err != nil {
			return err
		}
		return importTable(ctx, pool, cfg.Import.PosmTable, snap.Posm)
	},
}

// importTable replaces target with the rows of t.
func importTable(ctx context.Context, pool db.Pool, target string, t *table.Table) error {
	cols, rows := tableRows(t)
	n, err := db.ReplaceTable(ctx, pool, db.ReplaceConfig{Table: target, Columns: cols}, rows)
	if err != nil {
		return eris.Wrapf(err, "import: %s", t.Name())
	}
	zap.L().Info("import complete",
		zap.String("dataset", t.Name()),
		zap.String("table", target),
		zap.Int64("rows", n),
	)
	return nil
}

// tableRows converts t into COPY input. Missing values become NULL.
func tableRows(t *table.Table) ([]string, [][]any) {
	cols := t.Columns()
	rows := make([][]any, 0, t.Len())
	t.Each(func(r table.Row) bool {
		rec := make([]any, len(cols))
		for i, c := range cols {
			if v, ok := r.String(c); ok {
				rec[i] = v
			}
		}
		rows = append(rows, rec)
		return true
	})
	return cols, rows
}

func init() {
	rootCmd.AddCommand(importCmd)
}
