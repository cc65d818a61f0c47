package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/services"
)

type StageHandler struct {
	stageService services.StageService
}

func NewStageHandler(stageService services.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

// GetDetailHandler handles GET /stages/{stageID}
func (h *StageHandler) GetDetailHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stage, err := h.stageService.GetStageDetail(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /stages/{stageID}/start
func (h *StageHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.stageService.Start)
}

// CompleteHandler handles POST /stages/{stageID}/complete
func (h *StageHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.stageService.Complete)
}

// CancelHandler handles POST /stages/{stageID}/cancel
func (h *StageHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.stageService.Cancel)
}

func (h *StageHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, stageID int) (*models.Stage, error)) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stage, err := fn(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateFixturesHandler handles POST /stages/{stageID}/fixtures/generate
func (h *StageHandler) GenerateFixturesHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	mode := services.ModeInitial
	if raw := r.URL.Query().Get("mode"); raw != "" {
		mode = services.GenerationMode(raw)
	}
	fixtures, err := h.stageService.GenerateFixtures(r.Context(), stageID, mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListFixturesHandler handles GET /stages/{stageID}/fixtures
func (h *StageHandler) ListFixturesHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	fixtures, err := h.stageService.ListFixtures(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ComputeRankingsHandler handles POST /stages/{stageID}/rankings/compute
func (h *StageHandler) ComputeRankingsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rankings, err := h.stageService.ComputeRankings(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRankingsHandler handles GET /stages/{stageID}/rankings with an
// optional group_id query parameter scoping the table to one group.
func (h *StageHandler) ListRankingsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var rankings []*models.Ranking
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		groupID, convErr := strconv.Atoi(raw)
		if convErr != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid group_id %q", raw))
			return
		}
		rankings, err = h.stageService.ListGroupRankings(r.Context(), stageID, groupID)
	} else {
		rankings, err = h.stageService.ListRankings(r.Context(), stageID)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
