package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

// submitRequest starts one analysis task.
type submitRequest struct {
	ImageRef string  `json:"image_ref"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// taskResponse is the analysis service's task state. Detections are present
// only when Status is "ready".
type taskResponse struct {
	TaskID     string      `json:"task_id"`
	Status     string      `json:"status"` // pending, processing, ready, failed
	Error      string      `json:"error,omitempty"`
	Detections []detection `json:"detections,omitempty"`
}

// detection is one detected feature with its offset from the image center in
// degrees.
type detection struct {
	Kind        string  `json:"kind"` // building, surface, vegetation
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	OffsetLat   float64 `json:"offset_lat"`
	OffsetLng   float64 `json:"offset_lng"`
	Height      float64 `json:"height_m,omitempty"`
	Area        float64 `json:"area_sqm,omitempty"`
	Health      float64 `json:"health,omitempty"`
}

// ExtractFeatures submits an image, polls until the task is ready, and maps
// the detections into urban features anchored at the given center.
func (c *client) ExtractFeatures(ctx context.Context, imageRef string, center model.GeoPoint) (*model.UrbanFeatures, error) {
	taskID, err := c.submit(ctx, imageRef, center)
	if err != nil {
		return nil, err
	}

	task, err := c.waitReady(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return mapDetections(task.Detections, center), nil
}

// submit starts an analysis task and returns its ID.
func (c *client) submit(ctx context.Context, imageRef string, center model.GeoPoint) (string, error) {
	payload, err := json.Marshal(submitRequest{ImageRef: imageRef, Lat: center.Lat, Lng: center.Lng})
	if err != nil {
		return "", eris.Wrap(err, "vision: marshal submit request")
	}

	task, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*taskResponse, error) {
		return c.do(ctx, http.MethodPost, "/v1/tasks", bytes.NewReader(payload))
	})
	if err != nil {
		return "", err
	}
	if task.TaskID == "" {
		return "", eris.New("vision: service returned empty task id")
	}
	return task.TaskID, nil
}

// waitReady polls the task until it is ready, fails, or the wait budget runs
// out.
func (c *client) waitReady(ctx context.Context, taskID string) (*taskResponse, error) {
	deadline := time.Now().Add(c.maxWait)
	for {
		task, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*taskResponse, error) {
			return c.do(ctx, http.MethodGet, "/v1/tasks/"+taskID, nil)
		})
		if err != nil {
			return nil, err
		}

		switch task.Status {
		case "ready":
			return task, nil
		case "failed":
			msg := task.Error
			if msg == "" {
				msg = "unknown error"
			}
			return nil, eris.Errorf("vision: analysis failed: %s", msg)
		}

		if time.Now().After(deadline) {
			return nil, eris.Errorf("vision: task %s not ready after %s", taskID, c.maxWait)
		}

		zap.L().Debug("vision: task pending", zap.String("task_id", taskID), zap.String("status", task.Status))
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "vision: wait for task")
		case <-time.After(c.pollInterval):
		}
	}
}

// do performs one request against the analysis service.
func (c *client) do(ctx context.Context, method, path string, body io.Reader) (*taskResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, eris.Wrap(err, "vision: build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(err, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := eris.Errorf("vision: service returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "vision: read body"), 0)
	}

	var task taskResponse
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, eris.Wrap(err, "vision: parse response")
	}
	return &task, nil
}

// mapDetections converts raw detections into urban features, resolving each
// offset against the image center.
func mapDetections(detections []detection, center model.GeoPoint) *model.UrbanFeatures {
	features := &model.UrbanFeatures{}
	for _, d := range detections {
		loc := model.GeoPoint{
			Lat: center.Lat + d.OffsetLat,
			Lng: center.Lng + d.OffsetLng,
		}
		switch d.Kind {
		case "building":
			features.Buildings = append(features.Buildings, model.Building{
				Location: loc,
				Height:   d.Height,
				Area:     d.Area,
			})
		case "surface":
			features.Surfaces = append(features.Surfaces, model.SurfaceRegion{
				Location:       loc,
				Material:       SurfaceMaterial(d.Description),
				HeatAbsorption: HeatAbsorption(d.Description),
			})
		case "vegetation":
			features.Vegetation = append(features.Vegetation, model.VegetationRegion{
				Location: loc,
				Kind:     vegetationKind(d.Description),
				Health:   d.Health,
			})
		default:
			zap.L().Debug("vision: unknown detection kind", zap.String("kind", d.Kind))
		}
	}
	return features
}

// SurfaceMaterial classifies a ground surface from its detection description.
func SurfaceMaterial(description string) string {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "asphalt"):
		return "asphalt"
	case strings.Contains(desc, "concrete"):
		return "concrete"
	case strings.Contains(desc, "grass"), strings.Contains(desc, "vegetation"):
		return "grass"
	case strings.Contains(desc, "water"):
		return "water"
	default:
		return "unknown"
	}
}

// HeatAbsorption estimates a surface's heat absorption coefficient in [0, 1]
// from its detection description.
func HeatAbsorption(description string) float64 {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "asphalt"):
		return 0.9
	case strings.Contains(desc, "concrete"):
		return 0.8
	case strings.Contains(desc, "grass"),
		strings.Contains(desc, "vegetation"),
		strings.Contains(desc, "tree"):
		return 0.3
	case strings.Contains(desc, "water"):
		return 0.1
	default:
		return 0.5
	}
}

func vegetationKind(description string) string {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "tree"), strings.Contains(desc, "park"):
		return "trees"
	case strings.Contains(desc, "shrub"):
		return "shrubs"
	default:
		return "grass"
	}
}
