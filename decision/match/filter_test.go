package match

import (
	"testing"

	"agripower/catalog"
	"agripower/decision/terrain"
)

func tractor(id int64, hp float64, traction catalog.TractionType, status catalog.TractorStatus) catalog.Tractor {
	return catalog.Tractor{
		TractorID:     id,
		Name:          "t",
		Brand:         "brand",
		Model:         "model",
		EnginePowerHP: hp,
		WeightKg:      4000,
		TractionType:  traction,
		Status:        status,
	}
}

// Steep clay terrain (slope=20, soil=clay), required=85HP,
// catalog {A:4x4 100HP, B:4x2 90HP, C:track 150HP available}; B is excluded
// by the Golden Rule.
func TestFilterGoldenRuleExcludes2WDOnSteepSlope(t *testing.T) {
	analysis := terrain.Analyze("clay", 20)
	tractors := []catalog.Tractor{
		tractor(1, 100, catalog.Traction4x4, catalog.TractorAvailable),
		tractor(2, 90, catalog.Traction4x2, catalog.TractorAvailable),
		tractor(3, 150, catalog.TractionTrack, catalog.TractorAvailable),
	}

	result := Filter(tractors, 85, analysis, FilterOptions{})
	if len(result.Candidates) != 2 {
		t.Fatalf("Candidates = %d, want 2: %+v", len(result.Candidates), result.Candidates)
	}
	for _, c := range result.Candidates {
		if c.TractorID == 2 {
			t.Errorf("tractor B (4x2) survived the Golden Rule on a steep slope")
		}
	}
}

func TestFilterPowerThresholdEliminatesAll(t *testing.T) {
	analysis := terrain.Analyze("loam", 0)
	tractors := []catalog.Tractor{
		tractor(1, 50, catalog.Traction4x4, catalog.TractorAvailable),
	}
	result := Filter(tractors, 85, analysis, FilterOptions{})
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", result.Candidates)
	}
	if result.Reason != EliminationPowerThreshold {
		t.Errorf("Reason = %q, want EliminationPowerThreshold", result.Reason)
	}
}

func TestFilterAvailabilityUnionOfAvailableAndActive(t *testing.T) {
	analysis := terrain.Analyze("loam", 0)
	tractors := []catalog.Tractor{
		tractor(1, 100, catalog.Traction4x4, catalog.TractorActive),
		tractor(2, 100, catalog.Traction4x4, catalog.TractorMaintenance),
	}
	result := Filter(tractors, 50, analysis, FilterOptions{})
	if len(result.Candidates) != 1 || result.Candidates[0].TractorID != 1 {
		t.Fatalf("expected only the 'active' tractor to survive, got %+v", result.Candidates)
	}
}

func TestFilterIncludeUnavailableSkipsAvailabilityPredicate(t *testing.T) {
	analysis := terrain.Analyze("loam", 0)
	tractors := []catalog.Tractor{
		tractor(1, 100, catalog.Traction4x4, catalog.TractorMaintenance),
	}
	result := Filter(tractors, 50, analysis, FilterOptions{IncludeUnavailable: true})
	if len(result.Candidates) != 1 {
		t.Fatalf("expected the maintenance tractor to survive with IncludeUnavailable, got %+v", result.Candidates)
	}
}

func TestFilterAvailabilityEliminatesAll(t *testing.T) {
	analysis := terrain.Analyze("loam", 0)
	tractors := []catalog.Tractor{
		tractor(1, 100, catalog.Traction4x4, catalog.TractorInactive),
	}
	result := Filter(tractors, 50, analysis, FilterOptions{})
	if len(result.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", result.Candidates)
	}
	if result.Reason != EliminationAvailability {
		t.Errorf("Reason = %q, want EliminationAvailability", result.Reason)
	}
}
