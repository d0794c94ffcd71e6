package handlers

import (
	"net/http"

	"quizpanel/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService  *services.ContentService
	languageService *services.LanguageService
}

func NewContentHandler(contentService *services.ContentService, languageService *services.LanguageService) *ContentHandler {
	return &ContentHandler{
		contentService:  contentService,
		languageService: languageService,
	}
}

// Languages

func (h *ContentHandler) ListLanguages(c *gin.Context) {
	languages, err := h.languageService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, languages, "")
}

func (h *ContentHandler) ListActiveLanguages(c *gin.Context) {
	languages, err := h.languageService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, languages, "")
}

func (h *ContentHandler) CreateLanguage(c *gin.Context) {
	var req services.CreateLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	lang, err := h.languageService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, lang, "Language created successfully")
}

func (h *ContentHandler) UpdateLanguage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	lang, err := h.languageService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, lang, "Language updated successfully")
}

func (h *ContentHandler) DeleteLanguage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.languageService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Language deleted successfully")
}

// Page content

func (h *ContentHandler) ListPages(c *gin.Context) {
	pages, err := h.contentService.ListPages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pages, "")
}

func (h *ContentHandler) GetAll(c *gin.Context) {
	content, err := h.contentService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, content, "")
}

func (h *ContentHandler) GetSimple(c *gin.Context) {
	content, err := h.contentService.GetSimple(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, content, "")
}

func (h *ContentHandler) GetByLanguageCode(c *gin.Context) {
	content, err := h.contentService.GetByLanguage(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, content, "")
}

func (h *ContentHandler) GetByLanguageName(c *gin.Context) {
	content, err := h.contentService.GetByLanguageName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, content, "")
}

func (h *ContentHandler) GetStructure(c *gin.Context) {
	structure, err := h.contentService.GetStructure(c.Request.Context(), c.Param("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, structure, "")
}

func (h *ContentHandler) GetPage(c *gin.Context) {
	items, err := h.contentService.GetPage(c.Request.Context(), c.Param("page"), c.Param("language"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items, "")
}

func (h *ContentHandler) UpsertContent(c *gin.Context) {
	var req services.UpsertContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	item, err := h.contentService.Upsert(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, item, "Content saved successfully")
}

func (h *ContentHandler) BulkUpsertContent(c *gin.Context) {
	var req services.BulkContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	items, err := h.contentService.BulkUpsert(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items, "Translations saved successfully")
}

func (h *ContentHandler) UpdateContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	item, err := h.contentService.Update(c.Request.Context(), id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, item, "Content updated successfully")
}

func (h *ContentHandler) DeleteContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Content deleted successfully")
}
