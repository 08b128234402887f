package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"agripower/catalog"
)

// GetTerrain fetches a terrain row by ID, returning (nil, nil) when it
// doesn't exist so the guard's uniform NotFound handling applies.
func (s *Store) GetTerrain(ctx context.Context, id int64) (*catalog.Terrain, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT terrain_id, owner_user_id, name, altitude_m, slope_pct, soil_type, temperature_c, status
		FROM terrain WHERE terrain_id = $1`, id)

	var t catalog.Terrain
	var temperature sql.NullFloat64
	var status string
	if err := row.Scan(&t.TerrainID, &t.OwnerUserID, &t.Name, &t.AltitudeM, &t.SlopePct, &t.SoilType, &temperature, &status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get terrain: %w", err)
	}
	t.TemperatureC = nullableFloat(temperature)
	t.Status = catalog.TerrainStatus(status)
	return &t, nil
}

// GetImplement fetches an implement row by ID.
func (s *Store) GetImplement(ctx context.Context, id int64) (*catalog.Implement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT implement_id, implement_name, implement_type, power_requirement_hp, working_width_m, working_depth_cm, status
		FROM implement WHERE implement_id = $1`, id)

	var imp catalog.Implement
	var implementType string
	var workingDepthCM sql.NullFloat64
	if err := row.Scan(&imp.ImplementID, &imp.ImplementName, &implementType, &imp.PowerRequirementHP, &imp.WorkingWidthM, &workingDepthCM, &imp.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get implement: %w", err)
	}
	imp.ImplementType = catalog.ImplementType(implementType)
	imp.WorkingDepthCM = nullableFloat(workingDepthCM)
	return &imp, nil
}

// GetTractor fetches a single tractor row by ID.
func (s *Store) GetTractor(ctx context.Context, id int64) (*catalog.Tractor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tractor_id, name, brand, model, engine_power_hp, weight_kg, traction_force_kn,
		       traction_type, tire_type, fuel_consumption_lph, status
		FROM tractor WHERE tractor_id = $1`, id)
	t, err := scanTractor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// ListTractorsOptions filters the full tractor catalog read.
type ListTractorsOptions struct {
	// IncludeUnavailable, when false (the default), still returns every
	// status row. The availability predicate lives in the candidate
	// filter, not the read store, so the orchestrator can explain which
	// filter eliminated a candidate.
	IncludeUnavailable bool
}

// ListTractors loads the full tractor catalog backing the candidate
// filter.
func (s *Store) ListTractors(ctx context.Context, _ ListTractorsOptions) ([]catalog.Tractor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tractor_id, name, brand, model, engine_power_hp, weight_kg, traction_force_kn,
		       traction_type, tire_type, fuel_consumption_lph, status
		FROM tractor ORDER BY tractor_id`)
	if err != nil {
		return nil, fmt.Errorf("list tractors: %w", err)
	}
	defer rows.Close()

	var out []catalog.Tractor
	for rows.Next() {
		t, err := scanTractor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tractor: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows so scanTractor serves both a
// point-read and a list-read.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTractor(row rowScanner) (*catalog.Tractor, error) {
	var t catalog.Tractor
	var tractionType, status string
	var fuelLPH sql.NullFloat64
	if err := row.Scan(&t.TractorID, &t.Name, &t.Brand, &t.Model, &t.EnginePowerHP, &t.WeightKg,
		&t.TractionForceKN, &tractionType, &t.TireType, &fuelLPH, &status); err != nil {
		return nil, err
	}
	t.TractionType = catalog.TractionType(tractionType)
	t.Status = catalog.TractorStatus(status)
	t.FuelConsumptionLPH = nullableFloat(fuelLPH)
	return &t, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
