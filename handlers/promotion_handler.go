package handlers

import (
	"net/http"

	"github.com/myckhel/turfHub-sub002/middleware"
	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/services"
)

type PromotionHandler struct {
	promotionService services.PromotionService
}

func NewPromotionHandler(promotionService services.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// ConfigureHandler handles POST /stages/{stageID}/promotion
func (h *PromotionHandler) ConfigureHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		NextStageID int                  `json:"next_stage_id"`
		Rule        models.PromotionRule `json:"rule"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	promo := &models.StagePromotion{
		StageID:     stageID,
		NextStageID: input.NextStageID,
		RuleType:    input.Rule.Type,
		Rule:        input.Rule,
	}
	if err := h.promotionService.Configure(r.Context(), promo); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"promotion": promo}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetConfigurationHandler handles GET /stages/{stageID}/promotion
func (h *PromotionHandler) GetConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	promo, err := h.promotionService.GetConfiguration(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"promotion": promo}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveConfigurationHandler handles DELETE /stages/{stageID}/promotion
func (h *PromotionHandler) RemoveConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.promotionService.RemoveConfiguration(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SimulateHandler handles POST /stages/{stageID}/promotion/simulate
func (h *PromotionHandler) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	preview, err := h.promotionService.Simulate(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExecuteHandler handles POST /stages/{stageID}/promotion/execute
func (h *PromotionHandler) ExecuteHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var triggeredBy *int
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		triggeredBy = &userID
	}
	result, err := h.promotionService.Execute(r.Context(), stageID, triggeredBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"promotion": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler handles GET /stages/{stageID}/promotion/history
func (h *PromotionHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	audits, err := h.promotionService.History(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": audits}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
