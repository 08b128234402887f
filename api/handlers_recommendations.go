package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agripower/catalog"
	"agripower/decision/recommend"
	"agripower/internal/apierr"
)

// postGenerateRecommendation handles POST /api/recommendations/generate.
func (s *Server) postGenerateRecommendation(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	var body recommendationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.cfg, apierr.NewValidation("Cuerpo de solicitud inválido", nil))
		return
	}

	result, apiErr := recommend.Generate(r.Context(), s.reader, s.persister, body.toRequest(id.UserID))
	if apiErr != nil {
		writeError(w, s.cfg, apiErr)
		return
	}

	writeSuccess(w, toRecommendationResponse(result))
}

// getRecommendationHistory handles GET /api/recommendations/history.
func (s *Server) getRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	page, limit := pageParams(r)
	workType := catalog.WorkType(r.URL.Query().Get("work_type"))

	hist, err := s.store.ListRecommendationHistory(r.Context(), id.UserID, workType, page, limit)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar el historial de recomendaciones", err))
		return
	}

	writeSuccess(w, map[string]any{
		"items": hist.Items,
		"page":  pageMeta{Page: page, Limit: limit, Total: hist.Total},
	})
}

// getRecommendationByID handles GET /api/recommendations/{id}. Unlike the
// uniform 404 guard.CheckTerrainOwnership uses elsewhere, a row that exists
// but belongs to another user 403s here; only a genuinely missing row 404s.
func (s *Server) getRecommendationByID(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())

	recID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, s.cfg, apierr.NewValidation("Identificador inválido", nil))
		return
	}

	rec, err := s.store.GetRecommendationByID(r.Context(), recID)
	if err != nil {
		writeError(w, s.cfg, apierr.NewInternal("Error al cargar la recomendación", err))
		return
	}
	if rec == nil {
		writeError(w, s.cfg, apierr.NewNotFound("Recomendación no encontrada"))
		return
	}
	if rec.UserID != id.UserID {
		writeError(w, s.cfg, apierr.NewAuthorization("No tiene acceso a esta recomendación"))
		return
	}

	writeSuccess(w, rec)
}
