package handlers

import (
	"net/http"

	"DF-DOCGEN/internal/services"

	"github.com/gin-gonic/gin"
)

type ReferenceHandler struct {
	currencies *services.CurrencyService
	reference  *services.ReferenceService
}

func NewReferenceHandler(currencies *services.CurrencyService, reference *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{currencies: currencies, reference: reference}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *ReferenceHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencies.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, currencies)
}

func (h *ReferenceHandler) GetCurrency(c *gin.Context) {
	currency, err := h.currencies.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, currency)
}

func (h *ReferenceHandler) AddCurrency(c *gin.Context) {
	var in services.CurrencyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	currency, err := h.currencies.Add(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, currency)
}

func (h *ReferenceHandler) UpdateCurrency(c *gin.Context) {
	var in services.CurrencyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	currency, err := h.currencies.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, currency)
}

func (h *ReferenceHandler) DeleteCurrency(c *gin.Context) {
	if err := h.currencies.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReferenceHandler) ListCases(c *gin.Context) {
	cases, err := h.reference.ListCases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cases)
}

func (h *ReferenceHandler) CreateCase(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	created, err := h.reference.CreateCase(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ReferenceHandler) ListDocumentTypes(c *gin.Context) {
	types, err := h.reference.ListDocumentTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *ReferenceHandler) CreateDocumentType(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON")
		return
	}
	created, err := h.reference.CreateDocumentType(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
