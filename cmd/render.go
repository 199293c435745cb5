package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/analysis"
	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/render"
)

var (
	renderLat     float64
	renderLng     float64
	renderZoom    int
	renderLocal   bool
	renderBaseRef string
	renderHeatRef string
	renderOut     string
	renderMarkers bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Composite the satellite and heat layers into a PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("render"); err != nil {
			return err
		}

		comp := newCompositor(cfg)

		surface, err := comp.Render(ctx, renderBaseRef, renderHeatRef)
		if err != nil {
			return eris.Wrap(err, "render composite")
		}

		if renderMarkers {
			svc := newAnalysisService(cfg)
			req := analysis.Request{
				Viewport: model.Viewport{
					Center: model.GeoPoint{Lat: renderLat, Lng: renderLng},
					Zoom:   renderZoom,
				},
				BaseImageRef: renderBaseRef,
				HeatImageRef: renderHeatRef,
				LocalOnly:    renderLocal,
			}
			result, _, err := svc.Analyze(ctx, req, nil)
			if err != nil {
				return eris.Wrap(err, "analyze for markers")
			}
			placements := render.Positions(result.Interventions, surface.Width(), surface.Height())
			render.DrawMarkers(surface, placements)
			zap.L().Info("markers drawn", zap.Int("count", len(placements)))
		}

		out, err := os.Create(renderOut)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer out.Close()

		if err := surface.EncodePNG(out); err != nil {
			return eris.Wrap(err, "encode png")
		}

		zap.L().Info("render complete",
			zap.String("output", renderOut),
			zap.Int("width", surface.Width()),
			zap.Int("height", surface.Height()),
		)
		return nil
	},
}

func init() {
	renderCmd.Flags().Float64Var(&renderLat, "lat", 0, "viewport center latitude")
	renderCmd.Flags().Float64Var(&renderLng, "lng", 0, "viewport center longitude")
	renderCmd.Flags().IntVar(&renderZoom, "zoom", 15, "web-map zoom level")
	renderCmd.Flags().BoolVar(&renderLocal, "local", false, "derive markers from geography alone")
	renderCmd.Flags().StringVar(&renderBaseRef, "base-ref", "", "base satellite image reference")
	renderCmd.Flags().StringVar(&renderHeatRef, "heat-ref", "", "thermal overlay image reference")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "composite.png", "output PNG path")
	renderCmd.Flags().BoolVar(&renderMarkers, "markers", false, "run an analysis and draw intervention markers")
	rootCmd.AddCommand(renderCmd)
}
