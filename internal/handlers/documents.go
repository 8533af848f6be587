package handlers

import (
	"net/http"
	"strconv"

	"DF-DOCGEN/internal/middleware"
	"DF-DOCGEN/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 1000
)

type DocumentHandler struct {
	documents *services.DocumentService
	uploads   *services.UploadService
}

func NewDocumentHandler(documents *services.DocumentService, uploads *services.UploadService) *DocumentHandler {
	return &DocumentHandler{documents: documents, uploads: uploads}
}

func (h *DocumentHandler) List(c *gin.Context) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		badRequest(c, "offset must be an integer")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil {
		badRequest(c, "limit must be an integer")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	page, err := h.documents.ListPaged(c.Request.Context(), offset, limit, c.Query("case_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *DocumentHandler) GetAll(c *gin.Context) {
	docs, err := h.documents.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.GetByID(c.Request.Context(), c.Param("documentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	var req services.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	principalID, _ := middleware.PrincipalID(c)
	result, err := h.uploads.Upload(c.Request.Context(), req, principalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("documentId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
