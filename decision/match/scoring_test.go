package match

import (
	"testing"

	"agripower/catalog"
	"agripower/decision/terrain"
)

// required=85HP, candidates {A:100HP 4x4, D:200HP 4x4} on
// flat loam terrain. A's efficiency component should exceed D's, and A
// should outrank D overall.
func TestScoreCandidateOverpoweredPenalizedOnEfficiency(t *testing.T) {
	analysis := terrain.Analyze("loam", 0)
	a := tractor(1, 100, catalog.Traction4x4, catalog.TractorAvailable)
	d := tractor(2, 200, catalog.Traction4x4, catalog.TractorAvailable)

	scoreA := ScoreCandidate(a, 85, analysis, ScoreOptions{})
	scoreD := ScoreCandidate(d, 85, analysis, ScoreOptions{})

	if scoreA.Efficiency <= scoreD.Efficiency {
		t.Errorf("efficiency(A)=%v should exceed efficiency(D)=%v", scoreA.Efficiency, scoreD.Efficiency)
	}
	if scoreA.Total <= scoreD.Total {
		t.Errorf("total(A)=%v should exceed total(D)=%v", scoreA.Total, scoreD.Total)
	}
}

func TestEfficiencyScoreBreakpoints(t *testing.T) {
	if got := efficiencyScore(85, 85); got != 30 {
		t.Errorf("efficiencyScore(r=1.0) = %v, want 30", got)
	}
	if got := efficiencyScore(85*1.3, 85); got != 15 {
		t.Errorf("efficiencyScore(r=1.3) = %v, want 15", got)
	}
	if got := efficiencyScore(85*1.3*2, 85); got != 0 {
		t.Errorf("efficiencyScore(r=2.6) = %v, want 0 (clamped)", got)
	}
}

func TestComponentsWithinDeclaredRangesAndSumToTotal(t *testing.T) {
	analysis := terrain.Analyze("rocky", 25)
	lph := 8.0
	tr := tractor(1, 120, catalog.TractionTrack, catalog.TractorInUse)
	tr.FuelConsumptionLPH = &lph
	tr.TireType = "reforzado"

	s := ScoreCandidate(tr, 90, analysis, ScoreOptions{PreferredTire: "track"})

	checks := []struct {
		name        string
		val, lo, hi float64
	}{
		{"Efficiency", s.Efficiency, 0, WeightEfficiency},
		{"Traction", s.Traction, 0, WeightTraction},
		{"Soil", s.Soil, 0, WeightSoil},
		{"Economic", s.Economic, 0, WeightEconomic},
		{"Availability", s.Availability, 0, WeightAvailability},
	}
	for _, c := range checks {
		if c.val < c.lo || c.val > c.hi {
			t.Errorf("%s = %v, out of [%v,%v]", c.name, c.val, c.lo, c.hi)
		}
	}

	sum := s.Efficiency + s.Traction + s.Soil + s.Economic + s.Availability
	if diff := sum - s.Total; diff > 0.01 || diff < -0.01 {
		t.Errorf("Total = %v, sum of components = %v", s.Total, sum)
	}
}

func TestClassifyFitBands(t *testing.T) {
	cases := []struct {
		u    float64
		want Fit
	}{
		{90, FitOptimal},
		{85, FitOptimal},
		{75, FitGood},
		{70, FitGood},
		{60, FitOverpowered},
		{50, FitOverpowered},
		{20, FitExcessive},
	}
	for _, c := range cases {
		if got := classifyFit(c.u); got != c.want {
			t.Errorf("classifyFit(%v) = %v, want %v", c.u, got, c.want)
		}
	}
}

func TestAvailabilityScoreUnionOfAvailableAndActive(t *testing.T) {
	if got := availabilityScore(catalog.TractorAvailable); got != WeightAvailability {
		t.Errorf("availabilityScore(available) = %v, want %v", got, WeightAvailability)
	}
	if got := availabilityScore(catalog.TractorActive); got != WeightAvailability {
		t.Errorf("availabilityScore(active) = %v, want %v", got, WeightAvailability)
	}
	if got := availabilityScore(catalog.TractorInactive); got != 0 {
		t.Errorf("availabilityScore(inactive) = %v, want 0", got)
	}
}
