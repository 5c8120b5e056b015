package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"judgeboard/internal/api/middleware"
	"judgeboard/internal/app/access"
	"judgeboard/internal/app/service"
	"judgeboard/internal/common"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService *service.ContestService
}

func NewContestHandler(cs *service.ContestService) *ContestHandler {
	return &ContestHandler{contestService: cs}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(public chi.Router) {
		public.Use(middleware.MaybeAuthenticator)
		public.Get("/", h.listContests)
		public.Get("/{contestID}", h.getContest)
		public.Get("/{contestID}/overview", h.getOverview)
		public.Get("/{contestID}/ranklist", h.getRanklist)
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/{contestID}/verify", h.verifyContest)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.createContest)
		admin.Put("/{contestID}", h.updateContest)
		admin.Delete("/{contestID}", h.deleteContest)
	})
}

func contestIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "contestID"), 10, 64)
}

// requesterAndSession tolerates anonymous requests: the zero requester is
// non-privileged and the empty session is unverified for every contest.
func requesterAndSession(r *http.Request) (access.Requester, string) {
	requester, _ := middleware.GetRequesterFromContext(r.Context())
	sessionID, _ := middleware.GetSessionIDFromContext(r.Context())
	return requester, sessionID
}

func (h *ContestHandler) listContests(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	titleFilter := r.URL.Query().Get("title")

	requester, _ := requesterAndSession(r)
	contests, total, err := h.contestService.ListContests(r.Context(), requester, page, pageSize, titleFilter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"contests":  contests,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	id, err := contestIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contest id")
		return
	}
	requester, sessionID := requesterAndSession(r)

	contest, decision, err := h.contestService.GetContest(r.Context(), requester, sessionID, id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if decision != access.Allow {
		common.RespondWithDeny(w, decision.String())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) verifyContest(w http.ResponseWriter, r *http.Request) {
	id, err := contestIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contest id")
		return
	}
	requester, sessionID := requesterAndSession(r)

	var req struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	decision, err := h.contestService.VerifyContest(r.Context(), requester, sessionID, id, req.Secret)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if decision != access.Allow {
		common.RespondWithDeny(w, decision.String())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

func (h *ContestHandler) getOverview(w http.ResponseWriter, r *http.Request) {
	id, err := contestIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contest id")
		return
	}
	requester, sessionID := requesterAndSession(r)

	view, decision, err := h.contestService.Overview(r.Context(), requester, sessionID, id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if decision != access.Allow {
		common.RespondWithDeny(w, decision.String())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ContestHandler) getRanklist(w http.ResponseWriter, r *http.Request) {
	id, err := contestIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contest id")
		return
	}
	requester, sessionID := requesterAndSession(r)

	view, decision, err := h.contestService.Ranklist(r.Context(), requester, sessionID, id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if decision != access.Allow {
		common.RespondWithDeny(w, decision.String())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	requester, _ := requesterAndSession(r)

	var req service.CreateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contest, err := h.contestService.CreateContest(r.Context(), requester, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contest)
}

func (h *ContestHandler) updateContest(w http.ResponseWriter, r *http.Request) {
	id, err := contestIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contest id")
		return
	}
	requester, _ := requesterAndSession(r)

	var req service.UpdateContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contest, err := h.contestService.UpdateContest(r.Context(), requester, id, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) deleteContest(w http.ResponseWriter, r *http.Request) {
	id, err := contestIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contest id")
		return
	}
	requester, _ := requesterAndSession(r)

	if err := h.contestService.DeleteContest(r.Context(), requester, id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "contest deleted"})
}
