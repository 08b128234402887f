package recommend

import (
	"context"
	"testing"

	"agripower/catalog"
	"agripower/internal/apierr"
)

type fakeReader struct {
	terrain   *catalog.Terrain
	implement *catalog.Implement
	tractors  []catalog.Tractor
}

func (f *fakeReader) GetTerrain(ctx context.Context, id int64) (*catalog.Terrain, error) {
	return f.terrain, nil
}

func (f *fakeReader) GetImplement(ctx context.Context, id int64) (*catalog.Implement, error) {
	return f.implement, nil
}

func (f *fakeReader) ListTractors(ctx context.Context, opts ListOptions) ([]catalog.Tractor, error) {
	return f.tractors, nil
}

type fakePersister struct {
	lastSnapshot RecommendationSnapshot
	queryID      int64
}

func (f *fakePersister) PersistRecommendation(ctx context.Context, snap RecommendationSnapshot) (int64, *apierr.APIError) {
	f.lastSnapshot = snap
	f.queryID = 42
	return f.queryID, nil
}

func baseTerrain() *catalog.Terrain {
	return &catalog.Terrain{
		TerrainID:   1,
		OwnerUserID: 10,
		Name:        "parcel",
		AltitudeM:   100,
		SlopePct:    20,
		SoilType:    "clay",
		Status:      catalog.TerrainActive,
	}
}

func baseImplement() *catalog.Implement {
	depth := 25.0
	return &catalog.Implement{
		ImplementID:        1,
		ImplementName:      "plow",
		ImplementType:      catalog.ImplementPlow,
		PowerRequirementHP: 60,
		WorkingWidthM:      2,
		WorkingDepthCM:     &depth,
		Status:             "active",
	}
}

func TestGeneratePersistsTopThreeAndRanksDeterministically(t *testing.T) {
	reader := &fakeReader{
		terrain:   baseTerrain(),
		implement: baseImplement(),
		tractors: []catalog.Tractor{
			{TractorID: 1, Brand: "A", Model: "1", EnginePowerHP: 100, WeightKg: 4000, TractionType: catalog.Traction4x4, Status: catalog.TractorAvailable},
			{TractorID: 2, Brand: "B", Model: "2", EnginePowerHP: 90, WeightKg: 4000, TractionType: catalog.Traction4x2, Status: catalog.TractorAvailable},
			{TractorID: 3, Brand: "C", Model: "3", EnginePowerHP: 150, WeightKg: 5000, TractionType: catalog.TractionTrack, Status: catalog.TractorAvailable},
		},
	}
	persister := &fakePersister{}

	result, apiErr := Generate(context.Background(), reader, persister, Request{
		CallerUserID: 10,
		TerrainID:    1,
		ImplementID:  1,
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}

	// B (4x2, 90HP) falls below the ~98.67HP minimum power threshold and
	// would additionally fail the Golden Rule on this steep slope; only A
	// and C remain.
	if result.Summary.TotalCandidates != 2 {
		t.Fatalf("TotalCandidates = %d, want 2", result.Summary.TotalCandidates)
	}
	for _, rc := range result.Ranked {
		if rc.Tractor.TractorID == 2 {
			t.Errorf("tractor B survived the Golden Rule filter")
		}
	}
	if result.QueryID != 42 {
		t.Errorf("QueryID = %d, want 42", result.QueryID)
	}
	if len(persister.lastSnapshot.Persisted) != len(result.Ranked) {
		t.Errorf("persisted %d rows, want %d (<=3)", len(persister.lastSnapshot.Persisted), len(result.Ranked))
	}
	if len(persister.lastSnapshot.Persisted) > maxPersisted {
		t.Errorf("persisted %d rows, exceeds max of %d", len(persister.lastSnapshot.Persisted), maxPersisted)
	}

	for i := 1; i < len(result.Ranked); i++ {
		if result.Ranked[i].Score.Total > result.Ranked[i-1].Score.Total {
			t.Errorf("ranked results are not weakly decreasing by score at index %d", i)
		}
		if result.Ranked[i].Rank != i+1 {
			t.Errorf("Rank[%d] = %d, want %d", i, result.Ranked[i].Rank, i+1)
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	reader := &fakeReader{
		terrain:   baseTerrain(),
		implement: baseImplement(),
		tractors: []catalog.Tractor{
			{TractorID: 1, Brand: "A", Model: "1", EnginePowerHP: 100, WeightKg: 4000, TractionType: catalog.Traction4x4, Status: catalog.TractorAvailable},
			{TractorID: 3, Brand: "C", Model: "3", EnginePowerHP: 150, WeightKg: 5000, TractionType: catalog.TractionTrack, Status: catalog.TractorAvailable},
		},
	}
	req := Request{CallerUserID: 10, TerrainID: 1, ImplementID: 1}

	r1, err1 := Generate(context.Background(), reader, &fakePersister{}, req)
	r2, err2 := Generate(context.Background(), reader, &fakePersister{}, req)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v / %v", err1, err2)
	}
	if len(r1.Ranked) != len(r2.Ranked) {
		t.Fatalf("ranked counts differ: %d vs %d", len(r1.Ranked), len(r2.Ranked))
	}
	for i := range r1.Ranked {
		if r1.Ranked[i].Tractor.TractorID != r2.Ranked[i].Tractor.TractorID {
			t.Errorf("rank %d differs between runs: %d vs %d", i, r1.Ranked[i].Tractor.TractorID, r2.Ranked[i].Tractor.TractorID)
		}
		if r1.Ranked[i].Score.Total != r2.Ranked[i].Score.Total {
			t.Errorf("score at rank %d differs between runs: %v vs %v", i, r1.Ranked[i].Score.Total, r2.Ranked[i].Score.Total)
		}
	}
}

func TestGenerateNoCompatibleCandidatesReturnsSuccessWithReason(t *testing.T) {
	reader := &fakeReader{
		terrain:   baseTerrain(),
		implement: baseImplement(),
		tractors: []catalog.Tractor{
			{TractorID: 1, Brand: "A", Model: "1", EnginePowerHP: 10, WeightKg: 4000, TractionType: catalog.Traction4x4, Status: catalog.TractorAvailable},
		},
	}
	result, apiErr := Generate(context.Background(), reader, &fakePersister{}, Request{
		CallerUserID: 10,
		TerrainID:    1,
		ImplementID:  1,
	})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if len(result.Ranked) != 0 {
		t.Fatalf("expected no ranked candidates, got %d", len(result.Ranked))
	}
	if result.Summary.Reason == "" {
		t.Errorf("expected a non-empty elimination reason")
	}
}

func TestGenerateRejectsNonOwnerTerrain(t *testing.T) {
	reader := &fakeReader{
		terrain:   baseTerrain(), // owned by user 10
		implement: baseImplement(),
	}
	_, apiErr := Generate(context.Background(), reader, &fakePersister{}, Request{
		CallerUserID: 99,
		TerrainID:    1,
		ImplementID:  1,
	})
	if apiErr == nil {
		t.Fatalf("expected a NotFound error for a non-owner request")
	}
	if apiErr.Kind.Status() != 404 {
		t.Errorf("status = %d, want 404", apiErr.Kind.Status())
	}
}
