package api

import (
	"context"

	"agripower/catalog"
	"agripower/db/postgres"
	"agripower/decision/recommend"
	"agripower/internal/apierr"
)

// storeAdapter bridges the concrete *postgres.Store to the orchestrator's
// CatalogReader/Persister interfaces, converting between the package-local
// option/snapshot types so decision/recommend stays decoupled from
// db/postgres.
type storeAdapter struct {
	*postgres.Store
}

func (a storeAdapter) ListTractors(ctx context.Context, opts recommend.ListOptions) ([]catalog.Tractor, error) {
	return a.Store.ListTractors(ctx, postgres.ListTractorsOptions{IncludeUnavailable: opts.IncludeUnavailable})
}

func (a storeAdapter) PersistRecommendation(ctx context.Context, snap recommend.RecommendationSnapshot) (int64, *apierr.APIError) {
	return a.Store.PersistRecommendation(ctx, postgres.RecommendationSnapshot{
		UserID:             snap.UserID,
		TerrainID:          snap.TerrainID,
		ImplementID:        snap.ImplementID,
		WorkType:           snap.WorkType,
		TopTractorID:       snap.TopTractorID,
		Persisted:          snap.Persisted,
		HistoryDescription: snap.HistoryDescription,
		HistoryResult:      snap.HistoryResult,
	})
}
