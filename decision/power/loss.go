// Package power implements the per-source HP loss breakdown and the
// minimum required power calculation. Both are pure, fully re-entrant:
// no process-wide mutable state, no I/O.
package power

import (
	"math"

	"agripower/internal/apierr"
	"agripower/pkg/units"
)

// ConversionFactor is the kgf*m/s to HP constant used by the
// rolling-resistance and slope-loss terms.
const ConversionFactor = 274.4

// DefaultSlippagePct is applied when the caller doesn't supply one.
const DefaultSlippagePct = 10.0

// DefaultTransmissionLossFactor is applied when the caller doesn't supply
// one.
const DefaultTransmissionLossFactor = 0.13

// DefaultConeIndex is the Cn used for unrecognized soil types.
const DefaultConeIndex = 35.0

// coneIndexBySoil maps the already-normalized soil enum to its Cone Index.
var coneIndexBySoil = map[string]float64{
	"clay":  45,
	"loam":  35,
	"sandy": 25,
	"firm":  50,
	"soft":  20,
}

// ConeIndex returns the Cone Index for a normalized soil type, defaulting
// to DefaultConeIndex for anything unrecognized.
func ConeIndex(soilType string) float64 {
	if cn, ok := coneIndexBySoil[soilType]; ok {
		return cn
	}
	return DefaultConeIndex
}

// LossInputs are the loss-calculator parameters. Callers wanting the
// default slippage or transmission factor pass DefaultSlippagePct /
// DefaultTransmissionLossFactor explicitly rather than relying on the zero
// value, since 0 is itself a valid (if unusual) input.
type LossInputs struct {
	EngineHP               float64
	AltitudeM              float64
	TemperatureC           float64
	TotalWeightKg          float64
	SoilConeIndex          float64
	SlopePct               float64
	SpeedKmh               float64
	SlippagePct            float64
	TransmissionLossFactor float64
}

// LossBreakdown is the calculator output: the six loss components plus
// gross/net power and efficiency.
type LossBreakdown struct {
	AltitudeHP          float64
	TemperatureHP       float64
	TransmissionHP      float64
	RollingResistanceHP float64
	SlopeHP             float64
	SlippageHP          float64
	TotalHP             float64
	GrossHP             float64
	NetHP               float64
	EfficiencyPct       float64
}

// Validate rejects NaN/negative inputs that the Guard should already have
// caught; CalculateLoss itself stays total otherwise (saturating at zero,
// never panicking).
func (in LossInputs) Validate() *apierr.APIError {
	fields := map[string]string{}
	if math.IsNaN(in.EngineHP) || in.EngineHP <= 0 {
		fields["engine_hp"] = "debe ser un número positivo"
	}
	if math.IsNaN(in.AltitudeM) || in.AltitudeM < 0 {
		fields["altitude_m"] = "debe ser un número no negativo"
	}
	if math.IsNaN(in.TemperatureC) {
		fields["temperature_c"] = "debe ser un número"
	}
	if math.IsNaN(in.TotalWeightKg) || in.TotalWeightKg < 0 {
		fields["total_weight_kg"] = "debe ser un número no negativo"
	}
	if math.IsNaN(in.SpeedKmh) || in.SpeedKmh < 0 {
		fields["speed_kmh"] = "debe ser un número no negativo"
	}
	if math.IsNaN(in.SlopePct) {
		fields["slope_pct"] = "debe ser un número"
	}
	if len(fields) > 0 {
		return apierr.NewValidation("Datos de entrada inválidos para el cálculo de pérdida de potencia", fields)
	}
	return nil
}

// CalculateLoss runs the fixed computation order: each step consumes the
// power remaining after the previous step.
func CalculateLoss(in LossInputs) (LossBreakdown, *apierr.APIError) {
	if err := in.Validate(); err != nil {
		return LossBreakdown{}, err
	}

	coneIndex := in.SoilConeIndex
	if coneIndex <= 0 {
		coneIndex = DefaultConeIndex
	}
	slippagePct := in.SlippagePct
	transmissionFactor := in.TransmissionLossFactor

	// 1-2: atmospheric losses (altitude, temperature) subtract from gross.
	altLoss := in.EngineHP * math.Max(0, in.AltitudeM/300) * 0.01
	tempLoss := in.EngineHP * math.Max(0, (in.TemperatureC-15)/5) * 0.01
	pAtm := in.EngineHP - altLoss - tempLoss

	// 3: transmission loss is a fraction of post-atmospheric power.
	transLoss := pAtm * transmissionFactor
	pWheels := pAtm - transLoss

	// 4: rolling resistance and slope losses, both functions of weight and
	// speed, both divided through the kgf*m/s -> HP conversion factor.
	slopeRad := units.SlopePercentToRadians(in.SlopePct)
	vMs := units.KmhToMs(in.SpeedKmh)
	muR := 1.2/coneIndex + 0.04
	rollLossHP := (muR * in.TotalWeightKg * math.Cos(slopeRad) * vMs) / ConversionFactor
	slopeLossHP := math.Max(0, in.TotalWeightKg*math.Sin(slopeRad)*vMs/ConversionFactor)

	pBeforeSlip := pWheels - rollLossHP - slopeLossHP

	// 5: slippage consumes a percentage of whatever power survived to the
	// wheels; never negative.
	slipLoss := math.Max(0, pBeforeSlip) * (slippagePct / 100)
	netHP := math.Max(0, pBeforeSlip-slipLoss)

	total := altLoss + tempLoss + transLoss + rollLossHP + slopeLossHP + slipLoss
	efficiency := 0.0
	if in.EngineHP > 0 {
		efficiency = 100 * netHP / in.EngineHP
	}

	return LossBreakdown{
		AltitudeHP:          units.Round2(altLoss),
		TemperatureHP:       units.Round2(tempLoss),
		TransmissionHP:      units.Round2(transLoss),
		RollingResistanceHP: units.Round2(rollLossHP),
		SlopeHP:             units.Round2(slopeLossHP),
		SlippageHP:          units.Round2(slipLoss),
		TotalHP:             units.Round2(total),
		GrossHP:             units.Round2(in.EngineHP),
		NetHP:               units.Round2(netHP),
		EfficiencyPct:       units.Round2(efficiency),
	}, nil
}
