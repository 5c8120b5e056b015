package handler

import (
	"encoding/json"
	"net/http"

	"judgeboard/internal/app/service"
	"judgeboard/internal/common"

	"github.com/go-chi/chi/v5"
)

type WebhookHandler struct {
	ingestService *service.SolutionIngestService
}

func NewWebhookHandler(is *service.SolutionIngestService) *WebhookHandler {
	return &WebhookHandler{ingestService: is}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	// The judge is the only expected caller; in deployment this route sits
	// behind network-level restrictions.
	r.Post("/solutions", h.handleJudgedSolution)
}

func (h *WebhookHandler) handleJudgedSolution(w http.ResponseWriter, r *http.Request) {
	var payload service.JudgedSolutionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	defer r.Body.Close()

	sol, err := h.ingestService.HandleJudgedSolution(r.Context(), payload)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sol)
}
