package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"agripower/catalog"
	"agripower/internal/apierr"
)

// RecommendationSnapshot is everything the orchestrator hands the gateway
// for a single recommendation request's transactional write.
type RecommendationSnapshot struct {
	UserID       int64
	TerrainID    int64
	ImplementID  int64
	WorkType     catalog.WorkType
	TopTractorID *int64
	// Persisted holds at most 3 ranked candidates; QueryID is filled in by
	// the gateway once the parent query row exists.
	Persisted          []catalog.Recommendation
	HistoryDescription string
	HistoryResult      any
}

// PowerLossSnapshot is everything the power-loss handler hands the gateway
// for a power-loss request's transactional write.
type PowerLossSnapshot struct {
	UserID             int64
	TerrainID          int64
	TractorID          int64
	Breakdown          catalog.PowerLoss
	HistoryDescription string
	HistoryResult      any
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) *apierr.APIError {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apierr.MapPostgresError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return apierr.MapPostgresError(err)
	}
	if err := tx.Commit(); err != nil {
		return apierr.MapPostgresError(err)
	}
	return nil
}

// PersistRecommendation inserts the query row, up to 3 recommendation
// rows, and the audit history row in a single unit of work. All-or-nothing:
// any failure rolls back every insert.
func (s *Store) PersistRecommendation(ctx context.Context, snap RecommendationSnapshot) (int64, *apierr.APIError) {
	var queryID int64
	correlationID := uuid.New()
	apiErr := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO query (user_id, terrain_id, tractor_id, implement_id, query_type, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING query_id`,
			snap.UserID, snap.TerrainID, snap.TopTractorID, snap.ImplementID,
			catalog.QueryTypeRecommendation, catalog.QueryStatusCompleted,
		).Scan(&queryID); err != nil {
			return err
		}

		persisted := snap.Persisted
		if len(persisted) > 3 {
			persisted = persisted[:3]
		}
		for _, rec := range persisted {
			observations, err := json.Marshal(rec.Observations)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO recommendation
					(query_id, user_id, terrain_id, tractor_id, implement_id, compatibility_score, observations, work_type)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				queryID, snap.UserID, snap.TerrainID, rec.TractorID, rec.ImplementID,
				rec.CompatibilityScore, observations, snap.WorkType,
			); err != nil {
				return err
			}
		}

		resultJSON, err := json.Marshal(snap.HistoryResult)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO query_history (user_id, query_id, action_type, description, result_json)
			VALUES ($1, $2, $3, $4, $5)`,
			snap.UserID, queryID, catalog.QueryTypeRecommendation,
			correlatedDescription(correlationID, snap.HistoryDescription), resultJSON)
		return err
	})
	if apiErr != nil {
		return 0, apiErr
	}
	return queryID, nil
}

// PersistPowerLoss inserts the query row, the power_loss row, and the
// audit history row in a single unit of work.
func (s *Store) PersistPowerLoss(ctx context.Context, snap PowerLossSnapshot) (int64, *apierr.APIError) {
	var queryID int64
	correlationID := uuid.New()
	apiErr := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO query (user_id, terrain_id, tractor_id, query_type, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING query_id`,
			snap.UserID, snap.TerrainID, snap.TractorID,
			catalog.QueryTypePowerLoss, catalog.QueryStatusCompleted,
		).Scan(&queryID); err != nil {
			return err
		}

		b := snap.Breakdown
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO power_loss
				(query_id, slope_hp, altitude_hp, rolling_resistance_hp, slippage_hp, transmission_hp, total_hp, gross_hp, net_hp, efficiency_pct)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			queryID, b.SlopeHP, b.AltitudeHP, b.RollingResistanceHP, b.SlippageHP, b.TransmissionHP,
			b.TotalHP, b.GrossHP, b.NetHP, b.EfficiencyPct,
		); err != nil {
			return err
		}

		resultJSON, err := json.Marshal(snap.HistoryResult)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO query_history (user_id, query_id, action_type, description, result_json)
			VALUES ($1, $2, $3, $4, $5)`,
			snap.UserID, queryID, catalog.QueryTypePowerLoss,
			correlatedDescription(correlationID, snap.HistoryDescription), resultJSON)
		return err
	})
	if apiErr != nil {
		return 0, apiErr
	}
	return queryID, nil
}

// MinimumPowerSnapshot is everything the handler hands the gateway for a
// minimum-power request's transactional write.
type MinimumPowerSnapshot struct {
	UserID             int64
	TerrainID          int64
	ImplementID        int64
	HistoryDescription string
	HistoryResult      any
}

// PersistMinimumPower inserts the query row and the audit history row in a
// single unit of work. Minimum-power queries have no child table.
func (s *Store) PersistMinimumPower(ctx context.Context, snap MinimumPowerSnapshot) (int64, *apierr.APIError) {
	var queryID int64
	correlationID := uuid.New()
	apiErr := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO query (user_id, terrain_id, implement_id, query_type, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING query_id`,
			snap.UserID, snap.TerrainID, snap.ImplementID,
			catalog.QueryTypeMinimumPower, catalog.QueryStatusCompleted,
		).Scan(&queryID); err != nil {
			return err
		}

		resultJSON, err := json.Marshal(snap.HistoryResult)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO query_history (user_id, query_id, action_type, description, result_json)
			VALUES ($1, $2, $3, $4, $5)`,
			snap.UserID, queryID, catalog.QueryTypeMinimumPower,
			correlatedDescription(correlationID, snap.HistoryDescription), resultJSON)
		return err
	})
	if apiErr != nil {
		return 0, apiErr
	}
	return queryID, nil
}

// correlatedDescription prefixes an audit description with the request's
// correlation ID so a single computation can be traced across its
// query/child/history rows.
func correlatedDescription(correlationID uuid.UUID, description string) string {
	return fmt.Sprintf("[%s] %s", correlationID, description)
}
