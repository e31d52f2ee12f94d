package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/phase"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/store"
	"github.com/sells-group/retail-presence/internal/table"
)

var checkFormat string

// datasetReport summarizes one loaded dataset.
type datasetReport struct {
	Dataset       string            `json:"dataset" yaml:"dataset"`
	Rows          int               `json:"rows" yaml:"rows"`
	Columns       int               `json:"columns" yaml:"columns"`
	HasRetailerID bool              `json:"hasRetailerId" yaml:"has_retailer_id"`
	Coverage      provider.Coverage `json:"coverage" yaml:"coverage"`
	MinPhase      *float64          `json:"minPhase,omitempty" yaml:"min_phase,omitempty"`
	MaxPhase      *float64          `json:"maxPhase,omitempty" yaml:"max_phase,omitempty"`
}

type checkReport struct {
	SnapshotID string          `json:"snapshotId" yaml:"snapshot_id"`
	LoadedAt   time.Time       `json:"loadedAt" yaml:"loaded_at"`
	Datasets   []datasetReport `json:"datasets" yaml:"datasets"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load both datasets and report column coverage and capture phases",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("check"); err != nil {
			return err
		}

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Store.Load(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "check: load")
		}
		return writeReport(cmd.OutOrStdout(), buildReport(snap), checkFormat)
	},
}

func buildReport(snap *store.Snapshot) checkReport {
	return checkReport{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt,
		Datasets: []datasetReport{
			describe(store.BoardDataset, snap.Board, snap.BoardCoverage),
			describe(store.PosmDataset, snap.Posm, snap.PosmCoverage),
		},
	}
}

func describe(name string, t *table.Table, cov provider.Coverage) datasetReport {
	r := datasetReport{
		Dataset:       name,
		Rows:          t.Len(),
		Columns:       len(t.Columns()),
		HasRetailerID: t.HasColumn(filter.RetailerIDColumn),
		Coverage:      cov,
	}
	if lo, hi, ok := phaseRange(t); ok {
		r.MinPhase, r.MaxPhase = &lo, &hi
	}
	return r
}

// phaseRange returns the smallest and largest parseable capture phase.
func phaseRange(t *table.Table) (lo, hi float64, ok bool) {
	t.Each(func(r table.Row) bool {
		v, has := phase.Of(r)
		if !has {
			return true
		}
		if !ok || v < lo {
			lo = v
		}
		if !ok || v > hi {
			hi = v
		}
		ok = true
		return true
	})
	return lo, hi, ok
}

func writeReport(w io.Writer, r checkReport, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(r)
	case "", "text":
		return writeText(w, r)
	}
	return eris.Errorf("check: unknown format %q (want text, json or yaml)", format)
}

func writeText(w io.Writer, r checkReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "snapshot %s loaded %s\n", r.SnapshotID, r.LoadedAt.Format(time.RFC3339))
	for _, d := range r.Datasets {
		fmt.Fprintf(&b, "\n%s: %d rows, %d columns\n", d.Dataset, d.Rows, d.Columns)
		if !d.HasRetailerID {
			fmt.Fprintf(&b, "  WARNING: no %s column\n", filter.RetailerIDColumn)
		}
		if d.MaxPhase != nil {
			fmt.Fprintf(&b, "  capture phases: %s .. %s\n",
				table.FormatNumber(*d.MinPhase), table.FormatNumber(*d.MaxPhase))
		} else {
			b.WriteString("  capture phases: none\n")
		}
		fmt.Fprintf(&b, "  provider columns: %d present, %d missing\n",
			len(d.Coverage.Present), len(d.Coverage.Missing))
		for _, col := range d.Coverage.Missing {
			fmt.Fprintf(&b, "    missing %s\n", col)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(checkCmd)
}
