package static

import "math"

// Dimension weights sum to 1.0; the score is a 0-100 weighted pass
// ratio where heavier severities count more toward a dimension.
var dimensionWeights = map[Dimension]float64{
	DimStructure:   0.30,
	DimNaming:      0.20,
	DimDescription: 0.25,
	DimContent:     0.25,
}

var severityWeights = map[Severity]float64{
	SeverityError:   1.0,
	SeverityWarning: 0.5,
	SeverityInfo:    0.25,
}

// DimensionSummary aggregates results for one dimension.
type DimensionSummary struct {
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	Score  float64 `json:"score"`
}

// Summary aggregates a report's results by dimension and severity.
type Summary struct {
	ByDimension map[Dimension]DimensionSummary `json:"by_dimension"`
	BySeverity  map[Severity]int               `json:"failures_by_severity"`
}

// CalculateScore computes the 0-100 quality score. Dimensions with no
// checks redistribute their weight across the rest.
func CalculateScore(results []Result) float64 {
	type tally struct {
		earned float64
		total  float64
	}
	tallies := make(map[Dimension]*tally)

	for _, r := range results {
		t := tallies[r.Dimension]
		if t == nil {
			t = &tally{}
			tallies[r.Dimension] = t
		}
		w := severityWeights[r.Severity]
		t.total += w
		if r.Passed {
			t.earned += w
		}
	}

	var score, weightUsed float64
	for dim, t := range tallies {
		if t.total == 0 {
			continue
		}
		w := dimensionWeights[dim]
		score += w * (t.earned / t.total)
		weightUsed += w
	}
	if weightUsed == 0 {
		return 0
	}
	return math.Round(score/weightUsed*10000) / 100
}

// BuildSummary tallies pass/fail per dimension plus failure counts per
// severity.
func BuildSummary(results []Result) Summary {
	summary := Summary{
		ByDimension: make(map[Dimension]DimensionSummary),
		BySeverity:  make(map[Severity]int),
	}

	perDim := make(map[Dimension][]Result)
	for _, r := range results {
		perDim[r.Dimension] = append(perDim[r.Dimension], r)
		if !r.Passed {
			summary.BySeverity[r.Severity]++
		}
	}
	for dim, dimResults := range perDim {
		ds := DimensionSummary{Score: CalculateScore(dimResults)}
		for _, r := range dimResults {
			if r.Passed {
				ds.Passed++
			} else {
				ds.Failed++
			}
		}
		summary.ByDimension[dim] = ds
	}
	return summary
}
