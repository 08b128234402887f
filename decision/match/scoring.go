package match

import (
	"strings"

	"agripower/catalog"
	"agripower/decision/terrain"
	"agripower/pkg/units"
)

// Fixed component weights; they sum to 100.
const (
	WeightEfficiency   = 30
	WeightTraction     = 25
	WeightSoil         = 20
	WeightEconomic     = 15
	WeightAvailability = 10
)

// tractionBonus is the base traction bonus table keyed by (traction type,
// slope class), before normalization to the 0..25 range.
var tractionBonus = map[catalog.TractionType]map[terrain.SlopeClass]float64{
	catalog.Traction4x4: {
		terrain.SlopeFlat:    5,
		terrain.SlopeRolling: 15,
		terrain.SlopeSteep:   25,
	},
	catalog.TractionTrack: {
		terrain.SlopeFlat:    0,
		terrain.SlopeRolling: 20,
		terrain.SlopeSteep:   30,
	},
	catalog.Traction4x2: {
		terrain.SlopeFlat:    10,
		terrain.SlopeRolling: 0,
		terrain.SlopeSteep:   -50,
	},
}

// Fit classifies a candidate's utilization into one of four bands.
type Fit string

const (
	FitOptimal     Fit = "OPTIMAL"
	FitGood        Fit = "GOOD"
	FitOverpowered Fit = "OVERPOWERED"
	FitExcessive   Fit = "EXCESSIVE"
)

// ScoreOptions carries the caller-supplied preferences the soil score
// consults. PreferredTire is one of "track", "reinforced", "standard", or
// empty.
type ScoreOptions struct {
	PreferredTire string
}

// Score is the result for one candidate: the five weighted components,
// their total, the utilization ratio, and the fit classification.
type Score struct {
	Efficiency   float64
	Traction     float64
	Soil         float64
	Economic     float64
	Availability float64
	Total        float64
	Utilization  float64
	Fit          Fit
}

// ScoreCandidate computes the weighted five-component score for one
// tractor against the required HP and terrain analysis.
func ScoreCandidate(t catalog.Tractor, requiredHP float64, analysis terrain.Analysis, opts ScoreOptions) Score {
	efficiency := efficiencyScore(t.EnginePowerHP, requiredHP)
	traction := tractionScore(t.TractionType, analysis.SlopeClass)
	soil := soilScore(t, analysis, opts.PreferredTire)
	economic := economicScore(t, requiredHP)
	availability := availabilityScore(t.Status)

	total := efficiency + traction + soil + economic + availability
	utilization := 0.0
	if t.EnginePowerHP > 0 {
		utilization = 100 * requiredHP / t.EnginePowerHP
	}

	return Score{
		Efficiency:   units.Round2(efficiency),
		Traction:     units.Round2(traction),
		Soil:         units.Round2(soil),
		Economic:     units.Round2(economic),
		Availability: units.Round2(availability),
		Total:        units.Round2(total),
		Utilization:  units.Round2(utilization),
		Fit:          classifyFit(utilization),
	}
}

// efficiencyScore implements the piecewise r = tractor_hp/required_hp
// curve: flat 30 up to parity, linear decay from 30 to 15 through 1.3x,
// then a continuing linear decay clamped at zero beyond that.
func efficiencyScore(tractorHP, requiredHP float64) float64 {
	if requiredHP <= 0 {
		return WeightEfficiency
	}
	r := tractorHP / requiredHP
	switch {
	case r <= 1.0:
		return WeightEfficiency
	case r <= 1.3:
		return 15 + (1.3-r)/(0.3)*15
	default:
		return maxFloat(0, 15-30*(r-1.3))
	}
}

// tractionScore normalizes the base bonus table into the 0..25 range.
func tractionScore(tractionType catalog.TractionType, slopeClass terrain.SlopeClass) float64 {
	bonus := tractionBonus[tractionType][slopeClass]
	score := ((bonus + 50) / 80) * WeightTraction
	return units.Clamp(score, 0, WeightTraction)
}

// soilScore applies the tire-preference bonus table, then the
// combined-difficulty penalty for non-track tractors on hard terrain.
func soilScore(t catalog.Tractor, analysis terrain.Analysis, preferredTire string) float64 {
	score := 10.0
	tireLower := strings.ToLower(t.TireType)
	switch preferredTire {
	case "track":
		if t.TractionType == catalog.TractionTrack {
			score = 20
		}
	case "reinforced":
		if strings.Contains(tireLower, "reinforced") || strings.Contains(tireLower, "reforzad") {
			score = 18
		}
	case "standard":
		if t.TractionType != catalog.TractionTrack {
			score = 16
		}
	}

	if analysis.CombinedDifficulty > 70 && t.TractionType != catalog.TractionTrack {
		score *= 0.7
	}

	return units.Clamp(score, 0, WeightSoil)
}

// economicScore prefers measured fuel consumption; falls back to the
// required/available power ratio as a proxy when consumption is unknown.
func economicScore(t catalog.Tractor, requiredHP float64) float64 {
	if t.FuelConsumptionLPH != nil {
		lph := *t.FuelConsumptionLPH
		score := (1 - (lph-5)/20) * WeightEconomic
		return units.Clamp(score, 0, WeightEconomic)
	}
	if t.EnginePowerHP <= 0 {
		return 0
	}
	score := (requiredHP / t.EnginePowerHP) * WeightEconomic
	return units.Clamp(score, 0, WeightEconomic)
}

// availabilityScore maps the tractor's status to its fixed point value.
// Unknown statuses are treated as available.
func availabilityScore(status catalog.TractorStatus) float64 {
	switch status {
	case catalog.TractorAvailable, catalog.TractorActive:
		return WeightAvailability
	case catalog.TractorInUse, catalog.TractorMaintenance:
		return WeightAvailability / 2
	case catalog.TractorInactive, catalog.TractorStatus("unavailable"):
		return 0
	default:
		return WeightAvailability
	}
}

func classifyFit(utilization float64) Fit {
	switch {
	case utilization >= 85:
		return FitOptimal
	case utilization >= 70:
		return FitGood
	case utilization >= 50:
		return FitOverpowered
	default:
		return FitExcessive
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
