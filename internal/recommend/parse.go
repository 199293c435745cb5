package recommend

import (
	"regexp"
	"strconv"
	"strings"
)

// The advisory collaborator delivers impact, cost and timeline as free text
// ("Could reduce local temperatures by 2-5°C", "$50,000 - $100,000",
// "6-12 months"). Parsing is best effort: a non-match means the candidate is
// excluded from that aggregate, nothing more.

var (
	impactRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*[-–]\s*(\d+(?:\.\d+)?))?\s*°?C\b`)
	costRe     = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)`)
	timelineRe = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*[-–]\s*(\d+(?:\.\d+)?))?\s*(hour|day|week|month|year)s?\b`)
)

// parseImpact extracts a temperature impact in °C. A range like "2-5°C"
// contributes its midpoint.
func parseImpact(text string) (float64, bool) {
	m := impactRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	lo, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "" {
		return lo, true
	}
	hi, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	return (lo + hi) / 2, true
}

// parseCost extracts a USD figure. "$50,000 - $100,000" yields the midpoint
// 75000; a single figure yields itself. Recurring costs ("$5,000/year") are
// treated as one-year figures.
func parseCost(text string) (float64, bool) {
	matches := costRe.FindAllStringSubmatch(text, 2)
	if len(matches) == 0 {
		return 0, false
	}
	var values []float64
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		values = append(values, v)
	}
	if len(values) == 1 {
		return values[0], true
	}
	return (values[0] + values[1]) / 2, true
}

var monthsPerUnit = map[string]float64{
	"hour":  1.0 / (24 * 30),
	"day":   1.0 / 30,
	"week":  7.0 / 30,
	"month": 1,
	"year":  12,
}

// parseTimelineMonths extracts a timeline horizon in months, taking the upper
// end of a range ("6-12 months" → 12, "1-2 years" → 24). Open-ended text like
// "Ongoing" does not parse.
func parseTimelineMonths(text string) (float64, bool) {
	m := timelineRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	bound := m[1]
	if m[2] != "" {
		bound = m[2]
	}
	v, err := strconv.ParseFloat(bound, 64)
	if err != nil {
		return 0, false
	}
	return v * monthsPerUnit[m[3]], true
}
