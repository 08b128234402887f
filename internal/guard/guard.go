// Package guard implements the ownership and input guard: bounds-checking
// of the already-decoded numeric fields of mutating requests, and the uniform
// "not found or not accessible" ownership check that prevents terrain-ID
// enumeration.
package guard

import (
	"math"

	"agripower/catalog"
	"agripower/internal/apierr"
)

const (
	maxWorkingSpeedKmh = 40
	maxWorkingDepthM   = 1.0
)

// PowerLossRequest is the validated shape of a power-loss calculation
// request.
type PowerLossRequest struct {
	TractorID              int64
	TerrainID              int64
	WorkingSpeedKmh        float64
	CarriedObjectsWeightKg float64
	SlippagePercent        *float64
}

// Validate bounds-checks a power-loss request.
func (r PowerLossRequest) Validate() *apierr.APIError {
	fields := map[string]string{}
	if r.TractorID <= 0 {
		fields["tractor_id"] = "debe ser un entero positivo"
	}
	if r.TerrainID <= 0 {
		fields["terrain_id"] = "debe ser un entero positivo"
	}
	if math.IsNaN(r.WorkingSpeedKmh) || r.WorkingSpeedKmh <= 0 {
		fields["working_speed_kmh"] = "debe ser mayor a 0"
	} else if r.WorkingSpeedKmh >= maxWorkingSpeedKmh {
		fields["working_speed_kmh"] = "debe ser menor a 40"
	}
	if math.IsNaN(r.CarriedObjectsWeightKg) || r.CarriedObjectsWeightKg < 0 {
		fields["carried_objects_weight_kg"] = "debe ser un número no negativo"
	}
	if len(fields) > 0 {
		return apierr.NewValidation("Datos de entrada inválidos", fields)
	}
	return nil
}

// RecommendationRequest is the validated shape of a recommendation
// request.
type RecommendationRequest struct {
	TerrainID     int64
	ImplementID   int64
	WorkingDepthM *float64
	WorkType      string
}

// Validate bounds-checks a recommendation request.
func (r RecommendationRequest) Validate() *apierr.APIError {
	fields := map[string]string{}
	if r.TerrainID <= 0 {
		fields["terrain_id"] = "debe ser un entero positivo"
	}
	if r.ImplementID <= 0 {
		fields["implement_id"] = "debe ser un entero positivo"
	}
	if r.WorkingDepthM != nil {
		depth := *r.WorkingDepthM
		if math.IsNaN(depth) || depth <= 0 {
			fields["working_depth_m"] = "debe ser mayor a 0"
		} else if depth > maxWorkingDepthM {
			fields["working_depth_m"] = "no puede superar 1.0"
		}
	}
	if len(fields) > 0 {
		return apierr.NewValidation("Datos de entrada inválidos", fields)
	}
	return nil
}

// ErrNotFoundOrNotAccessible is the uniform message used whether a terrain
// row doesn't exist or belongs to another user — never distinguished on
// the wire, which would let a caller enumerate other users' terrain IDs.
const ErrNotFoundOrNotAccessible = "Terreno no encontrado o no accesible"

// CheckTerrainOwnership enforces terrain.owner_user_id == callerUserID AND
// terrain.status == active, returning the uniform NotFound error for every
// failure mode (missing row, wrong owner, inactive terrain).
func CheckTerrainOwnership(t *catalog.Terrain, callerUserID int64) *apierr.APIError {
	if t == nil {
		return apierr.NewNotFound(ErrNotFoundOrNotAccessible)
	}
	if t.OwnerUserID != callerUserID {
		return apierr.NewNotFound(ErrNotFoundOrNotAccessible)
	}
	if t.Status != catalog.TerrainActive {
		return apierr.NewNotFound(ErrNotFoundOrNotAccessible)
	}
	return nil
}
