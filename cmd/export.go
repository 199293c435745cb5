package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/analysis"
	"github.com/coolcity/heatscan/internal/export"
	"github.com/coolcity/heatscan/internal/model"
)

var (
	exportLat     float64
	exportLng     float64
	exportZoom    int
	exportLocal   bool
	exportBaseRef string
	exportHeatRef string
	exportName    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run an analysis and export a shapefile and XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
			return eris.Wrap(err, "create export dir")
		}

		svc := newAnalysisService(cfg)
		req := analysis.Request{
			Viewport: model.Viewport{
				Center: model.GeoPoint{Lat: exportLat, Lng: exportLng},
				Zoom:   exportZoom,
			},
			BaseImageRef: exportBaseRef,
			HeatImageRef: exportHeatRef,
			LocalOnly:    exportLocal,
		}

		result, _, err := svc.Analyze(ctx, req, nil)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		shpPath := filepath.Join(cfg.Export.Dir, exportName+".shp")
		if err := export.WriteShapefile(shpPath, result.Interventions); err != nil {
			return eris.Wrap(err, "write shapefile")
		}

		xlsxPath := filepath.Join(cfg.Export.Dir, exportName+".xlsx")
		if err := export.WriteReport(xlsxPath, result); err != nil {
			return eris.Wrap(err, "write report")
		}

		zap.L().Info("export complete",
			zap.String("shapefile", shpPath),
			zap.String("report", xlsxPath),
			zap.Int("interventions", len(result.Interventions)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().Float64Var(&exportLat, "lat", 0, "viewport center latitude (required)")
	exportCmd.Flags().Float64Var(&exportLng, "lng", 0, "viewport center longitude (required)")
	exportCmd.Flags().IntVar(&exportZoom, "zoom", 15, "web-map zoom level")
	exportCmd.Flags().BoolVar(&exportLocal, "local", false, "skip collaborators and analyze from geography alone")
	exportCmd.Flags().StringVar(&exportBaseRef, "base-ref", "", "base satellite image reference")
	exportCmd.Flags().StringVar(&exportHeatRef, "heat-ref", "", "thermal overlay image reference")
	exportCmd.Flags().StringVar(&exportName, "name", "heatscan", "output file basename")
	_ = exportCmd.MarkFlagRequired("lat")
	_ = exportCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(exportCmd)
}
