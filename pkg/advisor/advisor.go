// Package advisor synthesizes tiered cooling recommendations from an
// integrated analysis snapshot. Claude drafts the recommendations when an API
// key is configured; a deterministic rule set produces them otherwise, and
// also backstops any model failure so an analysis never completes without
// recommendations.
package advisor

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/model"
)

// DefaultModel is the model used for recommendation drafting.
const DefaultModel = "claude-sonnet-4-5-20250929"

const maxTokens = 2048

// Snapshot is the integrated analysis state the advisor reasons over.
type Snapshot struct {
	Features   model.UrbanFeatures     `json:"urban_features"`
	Weather    model.WeatherConditions `json:"weather"`
	LandTemp   model.LandSurfaceTemp   `json:"land_surface_temperature"`
	Vegetation model.VegetationIndex   `json:"vegetation"`
	AirQuality model.AirQuality        `json:"air_quality"`
	Intensity  float64                 `json:"heat_island_intensity"`
}

// MessageCreator is the narrow slice of the Anthropic API the advisor uses.
type MessageCreator interface {
	CreateMessage(ctx context.Context, modelID string, system, user string) (string, error)
}

// Advisor produces tiered recommendations for one analysis snapshot.
type Advisor struct {
	creator MessageCreator
	model   string
}

// Option configures the advisor.
type Option func(*Advisor)

// WithModel overrides the drafting model.
func WithModel(m string) Option {
	return func(a *Advisor) {
		a.model = m
	}
}

// WithMessageCreator injects a message backend. Used by tests.
func WithMessageCreator(mc MessageCreator) Option {
	return func(a *Advisor) {
		a.creator = mc
	}
}

// New creates an Advisor. An empty API key disables model drafting entirely;
// the rule set then serves every request.
func New(apiKey string, opts ...Option) *Advisor {
	a := &Advisor{model: DefaultModel}
	if apiKey != "" {
		a.creator = &sdkCreator{client: sdk.NewClient(option.WithAPIKey(apiKey))}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Recommend returns tiered recommendations for the snapshot. Model failures
// degrade to the rule set rather than erroring.
func (a *Advisor) Recommend(ctx context.Context, snap Snapshot) (model.RecommendationTiers, error) {
	if a.creator == nil {
		return RuleTiers(snap), nil
	}

	tiers, err := a.draft(ctx, snap)
	if err != nil {
		zap.L().Warn("advisor: model drafting failed, using rule set", zap.Error(err))
		return RuleTiers(snap), nil
	}
	return tiers, nil
}

const systemPrompt = `You are an urban climate advisor. Given an urban heat
analysis snapshot as JSON, respond with ONLY a JSON object of tiered cooling
recommendations in this shape:

{"immediate": [...], "short_term": [...], "long_term": [...]}

Each entry: {"title": "...", "impact": "...", "cost": "...", "timeline": "..."}.
Impact values should quantify temperature reduction in °C where possible, cost
values should be dollar figures or ranges, timelines should be concrete spans.`

// draftedTiers is the JSON shape the model returns.
type draftedTiers struct {
	Immediate []draftedEntry `json:"immediate"`
	ShortTerm []draftedEntry `json:"short_term"`
	LongTerm  []draftedEntry `json:"long_term"`
}

type draftedEntry struct {
	Title    string `json:"title"`
	Impact   string `json:"impact"`
	Cost     string `json:"cost"`
	Timeline string `json:"timeline"`
}

func (a *Advisor) draft(ctx context.Context, snap Snapshot) (model.RecommendationTiers, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return model.RecommendationTiers{}, eris.Wrap(err, "advisor: marshal snapshot")
	}

	text, err := a.creator.CreateMessage(ctx, a.model, systemPrompt, string(payload))
	if err != nil {
		return model.RecommendationTiers{}, err
	}

	var drafted draftedTiers
	if err := json.Unmarshal([]byte(stripFences(text)), &drafted); err != nil {
		return model.RecommendationTiers{}, eris.Wrap(err, "advisor: parse drafted recommendations")
	}

	tiers := model.RecommendationTiers{
		Immediate: toCandidates(drafted.Immediate, model.TierImmediate),
		ShortTerm: toCandidates(drafted.ShortTerm, model.TierShortTerm),
		LongTerm:  toCandidates(drafted.LongTerm, model.TierLongTerm),
	}
	if len(tiers.Immediate)+len(tiers.ShortTerm)+len(tiers.LongTerm) == 0 {
		return model.RecommendationTiers{}, eris.New("advisor: model returned no recommendations")
	}
	return tiers, nil
}

func toCandidates(entries []draftedEntry, tier model.RecommendationTier) []model.RecommendationCandidate {
	out := make([]model.RecommendationCandidate, 0, len(entries))
	for _, e := range entries {
		if e.Title == "" {
			continue
		}
		out = append(out, model.RecommendationCandidate{
			Tier:     tier,
			Title:    e.Title,
			Impact:   e.Impact,
			Cost:     e.Cost,
			Timeline: e.Timeline,
		})
	}
	return out
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// sdkCreator backs MessageCreator with the official SDK.
type sdkCreator struct {
	client sdk.Client
}

func (c *sdkCreator) CreateMessage(ctx context.Context, modelID, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(modelID),
		MaxTokens: maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(user))},
	})
	if err != nil {
		return "", eris.Wrap(err, "advisor: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
