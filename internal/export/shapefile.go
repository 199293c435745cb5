// Package export writes analysis results to GIS and spreadsheet formats.
package export

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/geo"
	"github.com/coolcity/heatscan/internal/model"
)

// WriteShapefile writes the intervention markers as a point shapefile with
// ID, CATEGORY and MAGNITUDE attributes. The .shx and .dbf sidecars are
// produced alongside the given .shp path.
func WriteShapefile(path string, interventions []model.Intervention) error {
	writer, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}

	writer.SetFields([]shp.Field{
		shp.StringField("ID", 36),
		shp.StringField("CATEGORY", 20),
		shp.FloatField("MAGNITUDE", 12, 2),
	})

	for i, iv := range interventions {
		writer.Write(&shp.Point{X: iv.Location.Lng, Y: iv.Location.Lat})
		writer.WriteAttribute(i, 0, iv.ID)
		writer.WriteAttribute(i, 1, iv.Category.Label())
		writer.WriteAttribute(i, 2, iv.Magnitude)
	}
	writer.Close()

	// go-shp names the attribute sidecar by appending "dbf" to the path with
	// the ".shp" suffix stripped, losing the dot. Move it to the <base>.dbf
	// name that readers and GIS tools expect.
	base := strings.TrimSuffix(path, ".shp")
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return eris.Wrapf(err, "export: rename attribute sidecar for %s", path)
	}

	logged := []zap.Field{
		zap.String("path", path),
		zap.Int("markers", len(interventions)),
	}
	if b := geo.MarkerBounds(interventions); b != nil {
		logged = append(logged, zap.Float64s("extent",
			[]float64{b.Min(0), b.Min(1), b.Max(0), b.Max(1)}))
	}
	zap.L().Info("export: shapefile written", logged...)
	return nil
}

// ReadShapefile loads intervention markers back from a point shapefile.
// Attributes written by WriteShapefile are restored; unknown categories map
// to "other".
func ReadShapefile(path string) ([]model.Intervention, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// A shapefile without its attribute sidecar still yields point markers;
	// the attributes just come back zero-valued.
	hasAttrs := len(reader.Fields()) >= 3

	var out []model.Intervention
	for reader.Next() {
		_, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			continue
		}

		iv := model.Intervention{
			Location: model.GeoPoint{Lat: pt.Y, Lng: pt.X},
			Category: model.CategoryOther,
		}
		if hasAttrs {
			iv.ID = trimAttr(reader.Attribute(0))
			category := model.InterventionCategory(trimAttr(reader.Attribute(1)))
			if category.Valid() {
				iv.Category = category
			}
			iv.Magnitude = parseAttrFloat(reader.Attribute(2))
		}
		out = append(out, iv)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "export: read shapefile %s", path)
	}
	return out, nil
}
