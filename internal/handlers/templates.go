package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/middleware"
	"DF-DOCGEN/internal/services"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templates *services.TemplateService
	generator *services.Generator
}

func NewTemplateHandler(templates *services.TemplateService, generator *services.Generator) *TemplateHandler {
	return &TemplateHandler{templates: templates, generator: generator}
}

type AnchorsResponse struct {
	TemplateID string   `json:"template_id"`
	Anchors    []string `json:"anchors"`
}

// GenerateRequest is the body of both generation routes. Data stays raw so
// that a malformed payload surfaces as a payload error.
type GenerateRequest struct {
	CaseID         string          `json:"case_id"`
	DocumentTypeID string          `json:"document_type_id"`
	DocumentID     string          `json:"document_id"`
	Data           json.RawMessage `json:"data"`
}

func (h *TemplateHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("template")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".docx") {
		badRequest(c, "Only .docx files are supported")
		return
	}

	active, _ := strconv.ParseBool(c.PostForm("active"))
	tmpl, err := h.templates.UploadTemplate(c.Request.Context(), file, services.TemplateUpload{
		Name:           c.PostForm("name"),
		Filename:       header.Filename,
		DocumentTypeID: c.PostForm("document_type_id"),
		Active:         active,
		ContentType:    header.Header.Get("Content-Type"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	anchors, _ := tmpl.AnchorList()
	c.JSON(http.StatusCreated, gin.H{
		"template": tmpl,
		"anchors":  anchors,
	})
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.ListTemplates(c.Request.Context(), c.Query("document_type_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), c.Param("templateId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TemplateHandler) GetAnchors(c *gin.Context) {
	templateID := c.Param("templateId")
	anchors, err := h.templates.GetAnchors(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AnchorsResponse{TemplateID: templateID, Anchors: anchors})
}

func (h *TemplateHandler) Preview(c *gin.Context) {
	preview, err := h.generator.Preview(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Generate fills the template named in the path.
func (h *TemplateHandler) Generate(c *gin.Context) {
	h.generate(c, c.Param("templateId"), "")
}

// GenerateForType fills the active template of the document type in the path.
func (h *TemplateHandler) GenerateForType(c *gin.Context) {
	h.generate(c, "", c.Param("typeId"))
}

func (h *TemplateHandler) generate(c *gin.Context, templateID, typeID string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "Failed to read request body")
		return
	}
	var req GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", apperrors.ErrPayloadParse, err))
		return
	}
	if typeID != "" {
		if req.DocumentTypeID != "" && req.DocumentTypeID != typeID {
			badRequest(c, "document_type_id does not match the path")
			return
		}
		req.DocumentTypeID = typeID
	}

	principalID, _ := middleware.PrincipalID(c)
	result, err := h.generator.Generate(c.Request.Context(), services.GenerateRequest{
		TemplateID:     templateID,
		DocumentTypeID: req.DocumentTypeID,
		CaseID:         req.CaseID,
		DocumentID:     req.DocumentID,
		Payload:        req.Data,
		PrincipalID:    principalID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
