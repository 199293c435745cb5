package model

// InterventionCategory classifies a map marker. The set is closed: every
// category must have an entry in both categoryLabels and categoryColors, so a
// new category shows up as a missing-map-entry test failure rather than a
// silent default at render time.
type InterventionCategory string

const (
	CategoryTree         InterventionCategory = "tree"
	CategoryGreenRoof    InterventionCategory = "green_roof"
	CategoryWaterFeature InterventionCategory = "water_feature"
	CategoryHotZone      InterventionCategory = "hot_zone"
	CategoryCoolZone     InterventionCategory = "cool_zone"
	CategoryOther        InterventionCategory = "other"
)

// Categories lists every InterventionCategory in display order.
var Categories = []InterventionCategory{
	CategoryTree,
	CategoryGreenRoof,
	CategoryWaterFeature,
	CategoryHotZone,
	CategoryCoolZone,
	CategoryOther,
}

var categoryLabels = map[InterventionCategory]string{
	CategoryTree:         "tree",
	CategoryGreenRoof:    "green_roof",
	CategoryWaterFeature: "water_feature",
	CategoryHotZone:      "hot_zone",
	CategoryCoolZone:     "cool_zone",
	CategoryOther:        "other",
}

// categoryColors maps each category to its marker color (RGBA).
var categoryColors = map[InterventionCategory][4]uint8{
	CategoryTree:         {46, 160, 67, 255},
	CategoryGreenRoof:    {87, 171, 90, 255},
	CategoryWaterFeature: {52, 152, 219, 255},
	CategoryHotZone:      {231, 76, 60, 255},
	CategoryCoolZone:     {93, 173, 226, 255},
	CategoryOther:        {149, 165, 166, 255},
}

// Label returns the human-readable category name.
func (c InterventionCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(CategoryOther)
}

// Color returns the marker RGBA color for the category.
func (c InterventionCategory) Color() [4]uint8 {
	if rgba, ok := categoryColors[c]; ok {
		return rgba
	}
	return categoryColors[CategoryOther]
}

// Valid reports whether the category is one of the known values.
func (c InterventionCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Intervention is a discrete mitigation or risk marker produced by the
// analysis. Magnitude is a signed °C-equivalent impact: negative values cool,
// positive values heat. Read-only for the lifetime of one analysis session.
type Intervention struct {
	ID        string               `json:"id"`
	Location  GeoPoint             `json:"location"`
	Category  InterventionCategory `json:"category"`
	Magnitude float64              `json:"magnitude"`
}
