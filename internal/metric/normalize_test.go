package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coolcity/heatscan/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		metric      model.RawMetric
		wantDisplay float64
		wantStatus  model.MetricStatus
	}{
		{
			name:        "heat intensity scales by 25 and goes critical above 3",
			metric:      model.RawMetric{Name: model.MetricHeatIslandIntensity, Value: 3.2, Unit: model.UnitCelsius},
			wantDisplay: 80,
			wantStatus:  model.StatusCritical,
		},
		{
			name:        "heat intensity at threshold stays moderate",
			metric:      model.RawMetric{Name: model.MetricHeatIslandIntensity, Value: 3.0, Unit: model.UnitCelsius},
			wantDisplay: 75,
			wantStatus:  model.StatusModerate,
		},
		{
			name:        "heat intensity clamps at 100",
			metric:      model.RawMetric{Name: model.MetricHeatIslandIntensity, Value: 8.5, Unit: model.UnitCelsius},
			wantDisplay: 100,
			wantStatus:  model.StatusCritical,
		},
		{
			name:        "vegetation below 30 percent is critical",
			metric:      model.RawMetric{Name: model.MetricVegetationCoverage, Value: 23.5, Unit: model.UnitPercent},
			wantDisplay: 23.5,
			wantStatus:  model.StatusCritical,
		},
		{
			name:        "healthy vegetation is low risk",
			metric:      model.RawMetric{Name: model.MetricVegetationCoverage, Value: 55, Unit: model.UnitPercent},
			wantDisplay: 55,
			wantStatus:  model.StatusLow,
		},
		{
			name:        "dense building stock is high",
			metric:      model.RawMetric{Name: model.MetricBuildingDensity, Value: 72, Unit: model.UnitPercent},
			wantDisplay: 72,
			wantStatus:  model.StatusHigh,
		},
		{
			name:        "moderate building density",
			metric:      model.RawMetric{Name: model.MetricBuildingDensity, Value: 45, Unit: model.UnitPercent},
			wantDisplay: 45,
			wantStatus:  model.StatusModerate,
		},
		{
			name:        "surface temperature scales by 2, informational",
			metric:      model.RawMetric{Name: model.MetricSurfaceTemperature, Value: 31, Unit: model.UnitCelsius},
			wantDisplay: 62,
			wantStatus:  model.StatusModerate,
		},
		{
			name:        "unknown metric uses generic clamp and neutral status",
			metric:      model.RawMetric{Name: "albedo_proxy", Value: 140, Unit: model.UnitRatio},
			wantDisplay: 100,
			wantStatus:  model.StatusModerate,
		},
		{
			name:        "negative values clamp to zero",
			metric:      model.RawMetric{Name: model.MetricHeatIslandIntensity, Value: -1.2, Unit: model.UnitCelsius},
			wantDisplay: 0,
			wantStatus:  model.StatusModerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.metric)
			assert.Equal(t, tt.metric.Name, got.Name)
			assert.Equal(t, tt.metric.Value, got.RawValue)
			assert.InDelta(t, tt.wantDisplay, got.DisplayValue, 1e-9)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	raw := []model.RawMetric{
		{Name: model.MetricVegetationCoverage, Value: 20, Unit: model.UnitPercent},
		{Name: model.MetricBuildingDensity, Value: 80, Unit: model.UnitPercent},
	}
	display := NormalizeAll(raw)
	assert.Len(t, display, 2)
	assert.Equal(t, model.MetricVegetationCoverage, display[0].Name)
	assert.Equal(t, model.MetricBuildingDensity, display[1].Name)
}

func TestNormalizeAll_Empty(t *testing.T) {
	assert.Empty(t, NormalizeAll(nil))
}
