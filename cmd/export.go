package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/export"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/presence"
)

var (
	exportOut     string
	exportContext string
	exportSpec    filter.Spec
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write filtered latest-phase captures and provider metrics to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		env, err := initEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		if _, err := env.Store.Load(cmd.Context()); err != nil {
			return eris.Wrap(err, "export: load")
		}

		report, err := buildExport(env.Service, exportSpec, exportContext)
		if err != nil {
			return err
		}
		if err := export.Save(exportOut, report); err != nil {
			return err
		}

		zap.L().Info("export complete", zap.String("path", exportOut))
		return nil
	},
}

// buildExport runs the dashboard queries for the selected datasets. An
// empty context exports both.
func buildExport(svc *presence.Service, spec filter.Spec, context string) (export.Report, error) {
	var report export.Report
	both := context == ""
	only, err := filter.ParseContext(context)
	if err != nil {
		return report, err
	}

	if both || only == filter.Board {
		boards, err := svc.Boards(spec)
		if err != nil {
			return report, err
		}
		report.Boards = &boards
	}
	if both || only == filter.Posm {
		posm, err := svc.PosmGeneral(spec)
		if err != nil {
			return report, err
		}
		report.Posm = &posm
	}
	return report, nil
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOut, "out", "retail-presence.xlsx", "output workbook path")
	f.StringVar(&exportContext, "context", "", "board or posm (default both)")
	f.StringVar(&exportSpec.Provider, "provider", "", "provider filter")
	f.StringVar(&exportSpec.BoardType, "board-type", "", "board type filter: dealer, tin or vertical")
	f.StringVar(&exportSpec.Province, "province", "", "province filter")
	f.StringVar(&exportSpec.District, "district", "", "district filter")
	f.StringVar(&exportSpec.Division, "ds-division", "", "DS division filter")
	f.StringVar(&exportSpec.RetailerID, "retailer", "", "retailer id filter")
	rootCmd.AddCommand(exportCmd)
}
