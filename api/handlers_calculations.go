package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agripower/catalog"
	"agripower/db/postgres"
	"agripower/decision/power"
	"agripower/decision/terrain"
	"agripower/internal/apierr"
	"agripower/internal/guard"
)

// postPowerLoss handles POST /api/calculations/power-loss: loads the
// terrain/tractor pair, enforces ownership, runs the loss breakdown, and
// persists it transactionally.
func (s *Server) postPowerLoss(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var body powerLossRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.cfg, apierr.NewValidation("Cuerpo de solicitud inválido", nil))
		return
	}

	guardReq := guard.PowerLossRequest{
		TractorID:              body.TractorID,
		TerrainID:              body.TerrainID,
		WorkingSpeedKmh:        body.WorkingSpeedKmh,
		CarriedObjectsWeightKg: body.CarriedObjectsWeightKg,
		SlippagePercent:        body.SlippagePercent,
	}
	if apiErr := guardReq.Validate(); apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	ctx := r.Context()
	terr, err := s.store.GetTerrain(ctx, body.TerrainID)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar el terreno", err))
		return
	}
	if apiErr := guard.CheckTerrainOwnership(terr, id.UserID); apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	tractor, err := s.store.GetTractor(ctx, body.TractorID)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar el tractor", err))
		return
	}
	if tractor == nil {
		writeError(w, s.cfg, apierr.NewNotFound("Tractor no encontrado"))
		return
	}

	analysis := terrain.Analyze(terr.SoilType, terr.SlopePct)

	slippage := power.DefaultSlippagePct
	if body.SlippagePercent != nil {
		slippage = *body.SlippagePercent
	}
	temperatureC := 15.0
	if terr.TemperatureC != nil {
		temperatureC = *terr.TemperatureC
	}

	breakdown, apiErr := power.CalculateLoss(power.LossInputs{
		EngineHP:               tractor.EnginePowerHP,
		AltitudeM:              terr.AltitudeM,
		TemperatureC:           temperatureC,
		TotalWeightKg:          tractor.WeightKg + body.CarriedObjectsWeightKg,
		SoilConeIndex:          power.ConeIndex(analysis.SoilType),
		SlopePct:               terr.SlopePct,
		SpeedKmh:               body.WorkingSpeedKmh,
		SlippagePct:            slippage,
		TransmissionLossFactor: power.DefaultTransmissionLossFactor,
	})
	if apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	queryID, apiErr := s.store.PersistPowerLoss(ctx, postgres.PowerLossSnapshot{
		UserID:    id.UserID,
		TerrainID: body.TerrainID,
		TractorID: body.TractorID,
		Breakdown: catalog.PowerLoss{
			SlopeHP:             breakdown.SlopeHP,
			AltitudeHP:          breakdown.AltitudeHP,
			RollingResistanceHP: breakdown.RollingResistanceHP,
			SlippageHP:          breakdown.SlippageHP,
			TransmissionHP:      breakdown.TransmissionHP,
			TotalHP:             breakdown.TotalHP,
			GrossHP:             breakdown.GrossHP,
			NetHP:               breakdown.NetHP,
			EfficiencyPct:       breakdown.EfficiencyPct,
		},
		HistoryDescription: "Cálculo de pérdida de potencia",
		HistoryResult:      breakdown,
	})
	if apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	writeSuccess(w, powerLossResponseBody{QueryID: queryID, Breakdown: breakdown})
}

// postMinimumPower handles POST /api/calculations/minimum-power.
func (s *Server) postMinimumPower(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var body minimumPowerRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.cfg, apierr.NewValidation("Cuerpo de solicitud inválido", nil))
		return
	}

	guardReq := guard.RecommendationRequest{
		TerrainID:     body.TerrainID,
		ImplementID:   body.ImplementID,
		WorkingDepthM: body.WorkingDepthM,
	}
	if apiErr := guardReq.Validate(); apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	ctx := r.Context()
	terr, err := s.store.GetTerrain(ctx, body.TerrainID)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar el terreno", err))
		return
	}
	if apiErr := guard.CheckTerrainOwnership(terr, id.UserID); apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	imp, err := s.store.GetImplement(ctx, body.ImplementID)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar el implemento", err))
		return
	}
	if imp == nil {
		writeError(w, s.cfg, apierr.NewNotFound("Implemento no encontrado"))
		return
	}

	analysis := terrain.Analyze(terr.SoilType, terr.SlopePct)

	workingDepthM := 0.0
	switch {
	case body.WorkingDepthM != nil && *body.WorkingDepthM > 0:
		workingDepthM = *body.WorkingDepthM
	case imp.WorkingDepthCM != nil && *imp.WorkingDepthCM > 0:
		workingDepthM = *imp.WorkingDepthCM / 100
	}

	result, apiErr := power.CalculateMinimum(power.MinimumPowerInputs{
		BaseHP:        imp.PowerRequirementHP,
		SoilType:      analysis.SoilType,
		SlopePct:      terr.SlopePct,
		WorkingDepthM: workingDepthM,
	})
	if apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	queryID, apiErr := s.store.PersistMinimumPower(ctx, postgres.MinimumPowerSnapshot{
		UserID:             id.UserID,
		TerrainID:          body.TerrainID,
		ImplementID:        body.ImplementID,
		HistoryDescription: "Cálculo de potencia mínima",
		HistoryResult:      result,
	})
	if apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	writeSuccess(w, toMinimumPowerResponse(queryID, result, *imp, *terr))
}

// getCalculationHistory handles GET /api/calculations/history.
func (s *Server) getCalculationHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	page, limit := pageParams(r)
	actionType := r.URL.Query().Get("type")

	hist, err := s.store.ListCalculationHistory(r.Context(), id.UserID, actionType, page, limit)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar el historial de cálculos", err))
		return
	}

	writeSuccess(w, map[string]any{
		"items": hist.Items,
		"page":  pageMeta{Page: page, Limit: limit, Total: hist.Total},
	})
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return page, limit
}
