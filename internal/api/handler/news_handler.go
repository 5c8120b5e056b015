package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"judgeboard/internal/api/middleware"
	"judgeboard/internal/app/service"
	"judgeboard/internal/common"

	"github.com/go-chi/chi/v5"
)

type NewsHandler struct {
	newsService *service.NewsService
}

func NewNewsHandler(ns *service.NewsService) *NewsHandler {
	return &NewsHandler{newsService: ns}
}

func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listNews)
	r.Get("/{newsID}", h.getNews)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.createNews)
		admin.Put("/{newsID}", h.updateNews)
		admin.Delete("/{newsID}", h.deleteNews)
	})
}

func newsIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "newsID"), 10, 64)
}

func (h *NewsHandler) listNews(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.newsService.ListNews(r.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"news":      items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *NewsHandler) getNews(w http.ResponseWriter, r *http.Request) {
	id, err := newsIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid news id")
		return
	}
	news, err := h.newsService.GetNews(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, news)
}

func (h *NewsHandler) createNews(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.GetRequesterFromContext(r.Context())

	var req service.CreateNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	news, err := h.newsService.CreateNews(r.Context(), requester, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, news)
}

func (h *NewsHandler) updateNews(w http.ResponseWriter, r *http.Request) {
	id, err := newsIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid news id")
		return
	}
	requester, _ := middleware.GetRequesterFromContext(r.Context())

	var req service.UpdateNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	news, err := h.newsService.UpdateNews(r.Context(), requester, id, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, news)
}

func (h *NewsHandler) deleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := newsIDParam(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid news id")
		return
	}
	requester, _ := middleware.GetRequesterFromContext(r.Context())

	if err := h.newsService.DeleteNews(r.Context(), requester, id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "news deleted"})
}
