package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/analysis"
	"github.com/coolcity/heatscan/internal/model"
)

var (
	analyzeLat     float64
	analyzeLng     float64
	analyzeZoom    int
	analyzeLocal   bool
	analyzeBaseRef string
	analyzeHeatRef string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a heat island analysis for a viewport",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		svc := newAnalysisService(cfg)

		req := analysis.Request{
			Viewport: model.Viewport{
				Center: model.GeoPoint{Lat: analyzeLat, Lng: analyzeLng},
				Zoom:   analyzeZoom,
			},
			BaseImageRef: analyzeBaseRef,
			HeatImageRef: analyzeHeatRef,
			LocalOnly:    analyzeLocal,
		}

		result, _, err := svc.Analyze(ctx, req, func(pct int) {
			zap.L().Debug("analysis progress", zap.Int("percent", pct))
		})
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.Float64("intensity", result.Intensity),
			zap.String("risk", string(result.Risk)),
			zap.Int("interventions", len(result.Interventions)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "viewport center latitude (required)")
	analyzeCmd.Flags().Float64Var(&analyzeLng, "lng", 0, "viewport center longitude (required)")
	analyzeCmd.Flags().IntVar(&analyzeZoom, "zoom", 15, "web-map zoom level")
	analyzeCmd.Flags().BoolVar(&analyzeLocal, "local", false, "skip collaborators and analyze from geography alone")
	analyzeCmd.Flags().StringVar(&analyzeBaseRef, "base-ref", "", "base satellite image reference (URL or file path)")
	analyzeCmd.Flags().StringVar(&analyzeHeatRef, "heat-ref", "", "thermal overlay image reference")
	_ = analyzeCmd.MarkFlagRequired("lat")
	_ = analyzeCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(analyzeCmd)
}
