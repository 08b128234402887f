// Package terrain implements the terrain analyzer: soil normalization,
// slope classification, combined difficulty, and the hard 4WD/track
// requirements the candidate filter enforces.
package terrain

import (
	"strings"

	"agripower/pkg/units"
)

// SlopeClass buckets a slope percentage into the three bands the scoring
// engine's traction table is keyed on.
type SlopeClass string

const (
	SlopeFlat    SlopeClass = "FLAT"
	SlopeRolling SlopeClass = "ROLLING"
	SlopeSteep   SlopeClass = "STEEP"
)

// Canonical soil types. Every soil label the terrain analyzer emits is one
// of these, regardless of the language it arrived in.
const (
	SoilClay    = "clay"
	SoilLoam    = "loam"
	SoilSandy   = "sandy"
	SoilRocky   = "rocky"
	SoilWetClay = "wet_clay"
)

// soilAliases normalizes the bilingual (Spanish/English) soil labels to the
// canonical enum. Normalization happens once, here, at the boundary — never
// in the scoring path.
var soilAliases = map[string]string{
	"arcilla":        SoilClay,
	"clay":           SoilClay,
	"franco":         SoilLoam,
	"loam":           SoilLoam,
	"arenoso":        SoilSandy,
	"sandy":          SoilSandy,
	"rocoso":         SoilRocky,
	"rocky":          SoilRocky,
	"arcilla_humeda": SoilWetClay,
	"wet_clay":       SoilWetClay,
}

// soilDifficulty is the base difficulty score per canonical soil type.
var soilDifficulty = map[string]float64{
	SoilSandy:   20,
	SoilLoam:    40,
	SoilClay:    70,
	SoilRocky:   85,
	SoilWetClay: 95,
}

// NormalizeSoil maps a bilingual, possibly differently-cased soil label to
// the canonical enum, defaulting to loam for anything unrecognized.
func NormalizeSoil(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := soilAliases[key]; ok {
		return canonical
	}
	return SoilLoam
}

// ClassifySlope buckets a slope percentage (may be negative) into FLAT,
// ROLLING, or STEEP by its absolute value.
func ClassifySlope(slopePct float64) SlopeClass {
	abs := slopePct
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 5:
		return SlopeFlat
	case abs < 15:
		return SlopeRolling
	default:
		return SlopeSteep
	}
}

// Analysis is consumed by the candidate filter (the Golden Rule) and the
// scoring engine (the soil score's difficulty penalty).
type Analysis struct {
	SoilType           string     `json:"soil_type"`
	SlopeClass         SlopeClass `json:"slope_class"`
	SoilDifficulty     float64    `json:"soil_difficulty"`
	CombinedDifficulty float64    `json:"combined_difficulty"`
	Requires4WD        bool       `json:"requires_4wd"`
	RequiresTrack      bool       `json:"requires_track"`
}

// Analyze runs the full analysis on a terrain's raw soil label and slope
// percentage.
func Analyze(rawSoilType string, slopePct float64) Analysis {
	soil := NormalizeSoil(rawSoilType)
	slopeClass := ClassifySlope(slopePct)
	difficulty := soilDifficulty[soil]

	combined := units.Clamp(0.6*difficulty+0.4*minFloat(40, 2*slopePct), 0, 100)

	return Analysis{
		SoilType:           soil,
		SlopeClass:         slopeClass,
		SoilDifficulty:     difficulty,
		CombinedDifficulty: units.Round2(combined),
		Requires4WD:        slopeClass == SlopeSteep,
		RequiresTrack:      soil == SoilWetClay || (soil == SoilClay && slopeClass == SlopeSteep),
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
