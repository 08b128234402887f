// Package recommend implements the recommendation orchestrator: it
// composes the minimum-power calculator, terrain analyzer, candidate
// filter, and scoring engine into the ranked, explained result the
// persistence gateway writes.
package recommend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"agripower/catalog"
	"agripower/decision/match"
	"agripower/decision/power"
	"agripower/decision/terrain"
	"agripower/internal/apierr"
	"agripower/internal/guard"
)

const (
	defaultWorkingDepthM = 0.25
	maxRanked            = 5
	maxPersisted         = 3
)

// CatalogReader is the subset of the catalog read store the orchestrator
// needs; an interface so tests can supply an in-memory fake.
type CatalogReader interface {
	GetTerrain(ctx context.Context, id int64) (*catalog.Terrain, error)
	GetImplement(ctx context.Context, id int64) (*catalog.Implement, error)
	ListTractors(ctx context.Context, opts ListOptions) ([]catalog.Tractor, error)
}

// ListOptions mirrors db/postgres's ListTractorsOptions without importing
// it, keeping the orchestrator decoupled from the concrete store package.
type ListOptions struct {
	IncludeUnavailable bool
}

// Request is the orchestrator input: the request body plus the caller's
// authenticated user ID.
type Request struct {
	CallerUserID       int64
	TerrainID          int64
	ImplementID        int64
	WorkingDepthM      *float64
	WorkType           catalog.WorkType
	PreferredTire      string
	IncludeUnavailable bool
}

// RankedCandidate is one scored, ranked tractor in the result.
type RankedCandidate struct {
	Rank           int
	Tractor        catalog.Tractor
	Score          match.Score
	Classification match.Fit
	Explanation    string
}

// Summary is the result's aggregate view.
type Summary struct {
	TopScore        float64
	TopTractorID    int64
	TotalCandidates int
	RankedCount     int
	PersistedCount  int
	Reason          string
}

// Result is the full orchestrator output.
type Result struct {
	Implement     catalog.Implement
	Terrain       catalog.Terrain
	Analysis      terrain.Analysis
	PowerRequired power.MinimumPowerResult
	Ranked        []RankedCandidate
	Summary       Summary
	QueryID       int64
}

// Persister is the subset of the persistence gateway the orchestrator
// drives; an interface so tests can supply an in-memory fake instead of a
// real database.
type Persister interface {
	PersistRecommendation(ctx context.Context, snap RecommendationSnapshot) (int64, *apierr.APIError)
}

// RecommendationSnapshot mirrors db/postgres.RecommendationSnapshot; kept
// as a local type so this package doesn't import db/postgres directly.
type RecommendationSnapshot struct {
	UserID             int64
	TerrainID          int64
	ImplementID        int64
	WorkType           catalog.WorkType
	TopTractorID       *int64
	Persisted          []catalog.Recommendation
	HistoryDescription string
	HistoryResult      any
}

// Generate runs the full recommendation flow: validate, load, compute
// required power, analyze terrain, filter, score, rank, explain, persist.
func Generate(ctx context.Context, reader CatalogReader, persister Persister, req Request) (Result, *apierr.APIError) {
	guardReq := guard.RecommendationRequest{
		TerrainID:     req.TerrainID,
		ImplementID:   req.ImplementID,
		WorkingDepthM: req.WorkingDepthM,
		WorkType:      string(req.WorkType),
	}
	if err := guardReq.Validate(); err != nil {
		return Result{}, err
	}

	var terr *catalog.Terrain
	var imp *catalog.Implement
	var tractors []catalog.Tractor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := reader.GetTerrain(gctx, req.TerrainID)
		if err != nil {
			return err
		}
		terr = t
		return nil
	})
	g.Go(func() error {
		i, err := reader.GetImplement(gctx, req.ImplementID)
		if err != nil {
			return err
		}
		imp = i
		return nil
	})
	g.Go(func() error {
		ts, err := reader.ListTractors(gctx, ListOptions{IncludeUnavailable: req.IncludeUnavailable})
		if err != nil {
			return err
		}
		tractors = ts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, apierr.NewInternal("Error al cargar los datos del terreno e implemento", err)
	}

	if apiErr := guard.CheckTerrainOwnership(terr, req.CallerUserID); apiErr != nil {
		return Result{}, apiErr
	}
	if imp == nil {
		return Result{}, apierr.NewNotFound("Implemento no encontrado")
	}

	workingDepthM := defaultWorkingDepthM
	switch {
	case req.WorkingDepthM != nil && *req.WorkingDepthM > 0:
		workingDepthM = *req.WorkingDepthM
	case imp.WorkingDepthCM != nil && *imp.WorkingDepthCM > 0:
		workingDepthM = *imp.WorkingDepthCM / 100
	}

	analysis := terrain.Analyze(terr.SoilType, terr.SlopePct)

	powerResult, apiErr := power.CalculateMinimum(power.MinimumPowerInputs{
		BaseHP:        imp.PowerRequirementHP,
		SoilType:      analysis.SoilType,
		SlopePct:      terr.SlopePct,
		WorkingDepthM: workingDepthM,
	})
	if apiErr != nil {
		return Result{}, apiErr
	}

	filtered := match.Filter(tractors, powerResult.MinimumHP, analysis, match.FilterOptions{
		IncludeUnavailable: req.IncludeUnavailable,
	})

	workType := req.WorkType
	if workType == "" {
		workType = catalog.WorkTypeGeneral
	}

	result := Result{
		Implement:     *imp,
		Terrain:       *terr,
		Analysis:      analysis,
		PowerRequired: powerResult,
	}

	if len(filtered.Candidates) == 0 {
		result.Summary = Summary{Reason: string(filtered.Reason)}
		return result, nil
	}

	ranked := rankCandidates(filtered.Candidates, powerResult.MinimumHP, analysis, req.PreferredTire)
	result.Summary = Summary{
		TopScore:        ranked[0].Score.Total,
		TopTractorID:    ranked[0].Tractor.TractorID,
		TotalCandidates: len(filtered.Candidates),
		RankedCount:     len(ranked),
	}

	persisted := make([]catalog.Recommendation, 0, maxPersisted)
	for i, rc := range ranked {
		if i >= maxPersisted {
			break
		}
		persisted = append(persisted, catalog.Recommendation{
			UserID:             req.CallerUserID,
			TerrainID:          req.TerrainID,
			TractorID:          rc.Tractor.TractorID,
			ImplementID:        req.ImplementID,
			CompatibilityScore: rc.Score.Total,
			WorkType:           workType,
			Observations: catalog.ObservationSnapshot{
				Rank: rc.Rank,
				Score: catalog.ScoreBreakdown{
					Total:        rc.Score.Total,
					Efficiency:   rc.Score.Efficiency,
					Traction:     rc.Score.Traction,
					Soil:         rc.Score.Soil,
					Economic:     rc.Score.Economic,
					Availability: rc.Score.Availability,
				},
				Compatibility:  rc.Score.Total,
				Classification: string(rc.Classification),
				Explanation:    rc.Explanation,
				Snapshot: map[string]any{
					"utilization_pct": rc.Score.Utilization,
					"required_hp":     powerResult.MinimumHP,
					"tractor_hp":      rc.Tractor.EnginePowerHP,
				},
			},
		})
	}
	result.Summary.PersistedCount = len(persisted)

	topTractorID := ranked[0].Tractor.TractorID
	queryID, apiErr := persister.PersistRecommendation(ctx, RecommendationSnapshot{
		UserID:             req.CallerUserID,
		TerrainID:          req.TerrainID,
		ImplementID:        req.ImplementID,
		WorkType:           workType,
		TopTractorID:       &topTractorID,
		Persisted:          persisted,
		HistoryDescription: fmt.Sprintf("Recomendación generada para terreno %d, implemento %d", req.TerrainID, req.ImplementID),
		HistoryResult:      result.Summary,
	})
	if apiErr != nil {
		return Result{}, apiErr
	}

	result.Ranked = ranked
	result.QueryID = queryID
	return result, nil
}

// rankCandidates scores every candidate, sorts by total descending with
// the deterministic tie-break (efficiency, then availability, then lower
// tractor_id), slices to the top 5, and synthesizes each one's
// explanation.
func rankCandidates(candidates []catalog.Tractor, requiredHP float64, analysis terrain.Analysis, preferredTire string) []RankedCandidate {
	scored := make([]RankedCandidate, len(candidates))
	for i, t := range candidates {
		score := match.ScoreCandidate(t, requiredHP, analysis, match.ScoreOptions{PreferredTire: preferredTire})
		scored[i] = RankedCandidate{
			Tractor:        t,
			Score:          score,
			Classification: score.Fit,
		}
	}

	sortCandidates(scored)

	if len(scored) > maxRanked {
		scored = scored[:maxRanked]
	}
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].Explanation = explain(scored[i])
	}
	return scored
}

func sortCandidates(scored []RankedCandidate) {
	// Simple insertion sort: candidate counts are small (bounded by the
	// catalog size) and this keeps the tie-break logic in one readable
	// place rather than a sort.Slice closure.
	for i := 1; i < len(scored); i++ {
		j := i
		for j > 0 && less(scored[j], scored[j-1]) {
			scored[j], scored[j-1] = scored[j-1], scored[j]
			j--
		}
	}
}

// less reports whether a should rank ahead of b: higher total score first,
// then higher efficiency component, then higher availability component,
// then lower tractor_id for full determinism.
func less(a, b RankedCandidate) bool {
	if a.Score.Total != b.Score.Total {
		return a.Score.Total > b.Score.Total
	}
	if a.Score.Efficiency != b.Score.Efficiency {
		return a.Score.Efficiency > b.Score.Efficiency
	}
	if a.Score.Availability != b.Score.Availability {
		return a.Score.Availability > b.Score.Availability
	}
	return a.Tractor.TractorID < b.Tractor.TractorID
}

// explain synthesizes a one-sentence Spanish explanation from the
// candidate's dominant score component and fit classification.
func explain(rc RankedCandidate) string {
	dominant, dominantValue := "eficiencia", rc.Score.Efficiency
	if rc.Score.Traction > dominantValue {
		dominant, dominantValue = "tracción", rc.Score.Traction
	}
	if rc.Score.Soil > dominantValue {
		dominant, dominantValue = "compatibilidad de suelo", rc.Score.Soil
	}
	if rc.Score.Economic > dominantValue {
		dominant, dominantValue = "eficiencia económica", rc.Score.Economic
	}
	if rc.Score.Availability > dominantValue {
		dominant, dominantValue = "disponibilidad", rc.Score.Availability
	}

	fitText := map[match.Fit]string{
		match.FitOptimal:     "un ajuste óptimo de potencia",
		match.FitGood:        "un buen ajuste de potencia",
		match.FitOverpowered: "potencia superior a la necesaria",
		match.FitExcessive:   "potencia muy superior a la necesaria",
	}[rc.Classification]

	return fmt.Sprintf("El %s %s destaca por su %s y ofrece %s (puntaje %.2f).",
		rc.Tractor.Brand, rc.Tractor.Model, dominant, fitText, rc.Score.Total)
}
