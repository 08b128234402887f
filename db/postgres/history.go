package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"agripower/catalog"
)

// RecommendationHistoryPage is one page of a user's past recommendations.
type RecommendationHistoryPage struct {
	Items []catalog.Recommendation
	Total int
}

// ListRecommendationHistory paginates a user's recommendation rows,
// optionally filtered by work type.
func (s *Store) ListRecommendationHistory(ctx context.Context, userID int64, workType catalog.WorkType, page, limit int) (RecommendationHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	args := []any{userID}
	where := "user_id = $1"
	if workType != "" {
		args = append(args, string(workType))
		where += fmt.Sprintf(" AND work_type = $%d", len(args))
	}

	var total int
	countQuery := "SELECT count(1) FROM recommendation WHERE " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return RecommendationHistoryPage{}, fmt.Errorf("count recommendation history: %w", err)
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT recommendation_id, query_id, user_id, terrain_id, tractor_id, implement_id,
		       compatibility_score, observations, work_type, created_at
		FROM recommendation WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return RecommendationHistoryPage{}, fmt.Errorf("list recommendation history: %w", err)
	}
	defer rows.Close()

	var items []catalog.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return RecommendationHistoryPage{}, fmt.Errorf("scan recommendation: %w", err)
		}
		items = append(items, rec)
	}
	return RecommendationHistoryPage{Items: items, Total: total}, rows.Err()
}

// GetRecommendationByID point-reads a recommendation by ID regardless of
// owner. Unlike the terrain ownership check (which never distinguishes
// "missing" from "not yours", to prevent enumeration), this read answers
// 403 for a real row owned by someone else and 404 for a genuinely missing
// one, so the HTTP handler compares rec.UserID against the caller's
// identity itself.
func (s *Store) GetRecommendationByID(ctx context.Context, id int64) (*catalog.Recommendation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT recommendation_id, query_id, user_id, terrain_id, tractor_id, implement_id,
		       compatibility_score, observations, work_type, created_at
		FROM recommendation WHERE recommendation_id = $1`, id)

	rec, err := scanRecommendation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	return &rec, nil
}

// CalculationHistoryPage is one page of a user's query_history audit rows
// (every action type unless a filter is given).
type CalculationHistoryPage struct {
	Items []catalog.QueryHistory
	Total int
}

// ListCalculationHistory paginates a user's audit rows, optionally
// filtered by action type ("power_loss"/"minimum_power"/"recommendation").
func (s *Store) ListCalculationHistory(ctx context.Context, userID int64, actionType string, page, limit int) (CalculationHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	args := []any{userID}
	where := "user_id = $1"
	if actionType != "" {
		args = append(args, actionType)
		where += fmt.Sprintf(" AND action_type = $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(1) FROM query_history WHERE "+where, args...).Scan(&total); err != nil {
		return CalculationHistoryPage{}, fmt.Errorf("count calculation history: %w", err)
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT history_id, user_id, query_id, action_type, description, result_json, created_at
		FROM query_history WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return CalculationHistoryPage{}, fmt.Errorf("list calculation history: %w", err)
	}
	defer rows.Close()

	var items []catalog.QueryHistory
	for rows.Next() {
		var h catalog.QueryHistory
		var resultJSON []byte
		if err := rows.Scan(&h.HistoryID, &h.UserID, &h.QueryID, &h.ActionType, &h.Description, &resultJSON, &h.CreatedAt); err != nil {
			return CalculationHistoryPage{}, fmt.Errorf("scan query_history: %w", err)
		}
		h.ResultJSON = string(resultJSON)
		items = append(items, h)
	}
	return CalculationHistoryPage{Items: items, Total: total}, rows.Err()
}

func scanRecommendation(row rowScanner) (catalog.Recommendation, error) {
	var rec catalog.Recommendation
	var workType string
	var observationsJSON []byte
	if err := row.Scan(&rec.RecommendationID, &rec.QueryID, &rec.UserID, &rec.TerrainID, &rec.TractorID,
		&rec.ImplementID, &rec.CompatibilityScore, &observationsJSON, &workType, &rec.CreatedAt); err != nil {
		return catalog.Recommendation{}, err
	}
	rec.WorkType = catalog.WorkType(workType)
	rec.Observations = decodeObservations(observationsJSON)
	return rec, nil
}

// decodeObservations is the read-path best-effort decoder: rows written by
// an older shape fall back to a raw-string wrapper rather than failing the
// whole read.
func decodeObservations(raw []byte) catalog.ObservationSnapshot {
	var snap catalog.ObservationSnapshot
	if err := json.Unmarshal(raw, &snap); err == nil {
		return snap
	}
	return catalog.ObservationSnapshot{
		Snapshot: map[string]any{"raw": string(raw)},
	}
}
