package render

import (
	"fmt"
	"image/color"

	"github.com/coolcity/heatscan/internal/model"
)

// Placement is one intervention positioned on the canonical surface.
type Placement struct {
	Intervention model.Intervention      `json:"intervention"`
	At           model.SurfaceCoordinate `json:"at"`
}

// Tooltip returns the hover text for the marker, e.g. "tree: -2.5°C impact".
func (p Placement) Tooltip() string {
	return fmt.Sprintf("%s: %.1f°C impact", p.Intervention.Category.Label(), p.Intervention.Magnitude)
}

// Positions projects every intervention onto a width×height surface. The
// output order matches the input order, one placement per intervention.
// Interventions that project to the same pixel are all kept — overlapping
// markers are a valid visual outcome, never merged or deduplicated.
func Positions(interventions []model.Intervention, width, height int) []Placement {
	placements := make([]Placement, len(interventions))
	for i, iv := range interventions {
		placements[i] = Placement{
			Intervention: iv,
			At:           Project(iv.Location, width, height),
		}
	}
	return placements
}

const (
	markerRadius = 6.0
	markerRing   = 1.5
)

// DrawMarkers paints each placement as a category-colored disc with a white
// ring, in placement order so later markers draw over earlier ones.
func DrawMarkers(s *Surface, placements []Placement) {
	for _, p := range placements {
		rgba := p.Intervention.Category.Color()
		s.FillDisc(p.At.X, p.At.Y, markerRadius, color.RGBA{rgba[0], rgba[1], rgba[2], rgba[3]})
		s.StrokeDisc(p.At.X, p.At.Y, markerRadius, markerRing, color.RGBA{255, 255, 255, 255})
	}
}
