package api

import (
	"agripower/catalog"
	"agripower/decision/power"
	"agripower/decision/recommend"
	"agripower/decision/terrain"
)

// powerLossRequestBody is the wire shape of POST /api/calculations/power-loss.
type powerLossRequestBody struct {
	TractorID              int64    `json:"tractor_id"`
	TerrainID              int64    `json:"terrain_id"`
	WorkingSpeedKmh        float64  `json:"working_speed_kmh"`
	CarriedObjectsWeightKg float64  `json:"carried_objects_weight_kg"`
	SlippagePercent        *float64 `json:"slippage_percent,omitempty"`
}

// powerLossResponseBody is the wire shape of a successful power-loss result.
type powerLossResponseBody struct {
	QueryID   int64               `json:"queryId"`
	Breakdown power.LossBreakdown `json:"breakdown"`
}

// minimumPowerRequestBody is the wire shape of
// POST /api/calculations/minimum-power.
type minimumPowerRequestBody struct {
	ImplementID   int64    `json:"implement_id"`
	TerrainID     int64    `json:"terrain_id"`
	WorkingDepthM *float64 `json:"working_depth_m,omitempty"`
}

// powerRequirement is the nested result object shared by the minimum-power
// and recommendation responses.
type powerRequirement struct {
	MinimumPowerHP    float64 `json:"minimum_power_hp"`
	CalculatedPowerHP float64 `json:"calculated_power_hp"`
	Factors           factors `json:"factors"`
}

type factors struct {
	SoilFactor   float64 `json:"soil_factor"`
	SlopeFactor  float64 `json:"slope_factor"`
	DepthFactor  float64 `json:"depth_factor"`
	SafetyMargin float64 `json:"safety_margin"`
}

type minimumPowerResponseBody struct {
	QueryID          int64             `json:"query_id"`
	PowerRequirement powerRequirement  `json:"powerRequirement"`
	Implement        catalog.Implement `json:"implement"`
	Terrain          catalog.Terrain   `json:"terrain"`
}

func toMinimumPowerResponse(queryID int64, r power.MinimumPowerResult, imp catalog.Implement, terr catalog.Terrain) minimumPowerResponseBody {
	return minimumPowerResponseBody{
		QueryID: queryID,
		PowerRequirement: powerRequirement{
			MinimumPowerHP:    r.MinimumHP,
			CalculatedPowerHP: r.CalculatedHP,
			Factors: factors{
				SoilFactor:   r.SoilFactor,
				SlopeFactor:  r.SlopeFactor,
				DepthFactor:  r.DepthFactor,
				SafetyMargin: r.SafetyMargin,
			},
		},
		Implement: imp,
		Terrain:   terr,
	}
}

// recommendationRequestBody is the wire shape of
// POST /api/recommendations/generate.
type recommendationRequestBody struct {
	TerrainID          int64    `json:"terrain_id"`
	ImplementID        int64    `json:"implement_id"`
	WorkingDepthM      *float64 `json:"working_depth_m,omitempty"`
	WorkType           string   `json:"work_type,omitempty"`
	PreferredTire      string   `json:"preferred_tire,omitempty"`
	IncludeUnavailable bool     `json:"include_unavailable,omitempty"`
}

func (b recommendationRequestBody) toRequest(callerUserID int64) recommend.Request {
	return recommend.Request{
		CallerUserID:       callerUserID,
		TerrainID:          b.TerrainID,
		ImplementID:        b.ImplementID,
		WorkingDepthM:      b.WorkingDepthM,
		WorkType:           catalog.WorkType(b.WorkType),
		PreferredTire:      b.PreferredTire,
		IncludeUnavailable: b.IncludeUnavailable,
	}
}

// rankedCandidateBody is the wire shape of one ranked recommendation.
type rankedCandidateBody struct {
	Rank           int       `json:"rank"`
	TractorID      int64     `json:"tractor_id"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	Score          scoreBody `json:"score"`
	Classification string    `json:"classification"`
	Explanation    string    `json:"explanation"`
}

type scoreBody struct {
	Total        float64 `json:"total"`
	Efficiency   float64 `json:"efficiency"`
	Traction     float64 `json:"traction"`
	Soil         float64 `json:"soil"`
	Economic     float64 `json:"economic"`
	Availability float64 `json:"availability"`
	Utilization  float64 `json:"utilization_pct"`
}

// recommendationSummaryBody mirrors recommend.Summary in full: topScore,
// topTractor, the candidate/ranked/persisted counts, and the elimination
// reason when nothing survived the candidate filter.
type recommendationSummaryBody struct {
	TopScore        float64 `json:"top_score,omitempty"`
	TopTractorID    int64   `json:"top_tractor_id,omitempty"`
	TotalCandidates int     `json:"total_candidates"`
	RankedCount     int     `json:"ranked_count"`
	PersistedCount  int     `json:"persisted_count"`
	Reason          string  `json:"reason,omitempty"`
}

type recommendationResponseBody struct {
	QueryID          int64                     `json:"query_id"`
	Implement        catalog.Implement         `json:"implement"`
	Terrain          catalog.Terrain           `json:"terrain"`
	Analysis         terrain.Analysis          `json:"analysis"`
	PowerRequirement powerRequirement          `json:"powerRequirement"`
	Ranked           []rankedCandidateBody     `json:"ranked"`
	Summary          recommendationSummaryBody `json:"summary"`
}

func toRecommendationResponse(res recommend.Result) recommendationResponseBody {
	ranked := make([]rankedCandidateBody, len(res.Ranked))
	for i, rc := range res.Ranked {
		ranked[i] = rankedCandidateBody{
			Rank:           rc.Rank,
			TractorID:      rc.Tractor.TractorID,
			Brand:          rc.Tractor.Brand,
			Model:          rc.Tractor.Model,
			Classification: string(rc.Classification),
			Explanation:    rc.Explanation,
			Score: scoreBody{
				Total:        rc.Score.Total,
				Efficiency:   rc.Score.Efficiency,
				Traction:     rc.Score.Traction,
				Soil:         rc.Score.Soil,
				Economic:     rc.Score.Economic,
				Availability: rc.Score.Availability,
				Utilization:  rc.Score.Utilization,
			},
		}
	}
	return recommendationResponseBody{
		QueryID:   res.QueryID,
		Implement: res.Implement,
		Terrain:   res.Terrain,
		Analysis:  res.Analysis,
		PowerRequirement: powerRequirement{
			MinimumPowerHP:    res.PowerRequired.MinimumHP,
			CalculatedPowerHP: res.PowerRequired.CalculatedHP,
			Factors: factors{
				SoilFactor:   res.PowerRequired.SoilFactor,
				SlopeFactor:  res.PowerRequired.SlopeFactor,
				DepthFactor:  res.PowerRequired.DepthFactor,
				SafetyMargin: res.PowerRequired.SafetyMargin,
			},
		},
		Ranked: ranked,
		Summary: recommendationSummaryBody{
			TopScore:        res.Summary.TopScore,
			TopTractorID:    res.Summary.TopTractorID,
			TotalCandidates: res.Summary.TotalCandidates,
			RankedCount:     res.Summary.RankedCount,
			PersistedCount:  res.Summary.PersistedCount,
			Reason:          res.Summary.Reason,
		},
	}
}

// pageMeta is the pagination envelope attached to history list responses.
type pageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
