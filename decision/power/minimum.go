package power

import (
	"math"

	"agripower/internal/apierr"
	"agripower/pkg/units"
)

// SafetyMargin is the fixed 15% margin always applied on top of the
// soil/slope/depth-scaled base requirement.
const SafetyMargin = 1.15

// ReferenceDepthM is the standard working depth the depth factor is scaled
// against.
const ReferenceDepthM = 0.25

// soilFactorByType maps the normalized soil enum to F_soil; unrecognized
// soils default to loam's 1.0.
var soilFactorByType = map[string]float64{
	"clay":  1.3,
	"loam":  1.0,
	"sandy": 0.8,
	"rocky": 1.5,
}

// SoilFactor returns F_soil for a normalized soil type, defaulting to loam.
func SoilFactor(soilType string) float64 {
	if f, ok := soilFactorByType[soilType]; ok {
		return f
	}
	return soilFactorByType["loam"]
}

// MinimumPowerInputs are the minimum-power parameters.
type MinimumPowerInputs struct {
	BaseHP        float64
	SoilType      string
	SlopePct      float64
	WorkingDepthM float64
}

// MinimumPowerResult is the pre-margin calculated HP, the
// margin-applied minimum HP, and the four factor values that produced it.
type MinimumPowerResult struct {
	CalculatedHP float64
	MinimumHP    float64
	SoilFactor   float64
	SlopeFactor  float64
	DepthFactor  float64
	SafetyMargin float64
}

// Validate rejects non-positive base HP or a non-numeric slope.
func (in MinimumPowerInputs) Validate() *apierr.APIError {
	fields := map[string]string{}
	if math.IsNaN(in.BaseHP) || in.BaseHP <= 0 {
		fields["power_requirement_hp"] = "debe ser un número positivo"
	}
	if math.IsNaN(in.SlopePct) {
		fields["slope_pct"] = "debe ser un número"
	}
	if len(fields) > 0 {
		return apierr.NewValidation("Datos de entrada inválidos para el cálculo de potencia mínima", fields)
	}
	return nil
}

// CalculateMinimum computes HP_min = HP_base * F_soil * F_slope * F_depth *
// SafetyMargin, returning the intermediate factors alongside the totals.
func CalculateMinimum(in MinimumPowerInputs) (MinimumPowerResult, *apierr.APIError) {
	if err := in.Validate(); err != nil {
		return MinimumPowerResult{}, err
	}

	depthM := in.WorkingDepthM
	if depthM <= 0 {
		depthM = ReferenceDepthM
	}

	soilFactor := SoilFactor(in.SoilType)
	slopeFactor := 1 + (in.SlopePct/100)*0.5
	depthFactor := depthM / ReferenceDepthM

	calculated := in.BaseHP * soilFactor * slopeFactor * depthFactor
	minimum := calculated * SafetyMargin

	return MinimumPowerResult{
		CalculatedHP: units.Round2(calculated),
		MinimumHP:    units.Round2(minimum),
		SoilFactor:   soilFactor,
		SlopeFactor:  slopeFactor,
		DepthFactor:  depthFactor,
		SafetyMargin: SafetyMargin,
	}, nil
}
