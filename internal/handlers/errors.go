package handlers

import (
	"net/http"

	"DF-DOCGEN/internal/apperrors"

	"github.com/gin-gonic/gin"
)

func statusFor(kind string) int {
	switch kind {
	case "invalid_argument":
		return http.StatusBadRequest
	case "not_found", "template_not_found":
		return http.StatusNotFound
	case "template_format", "payload_parse", "missing_anchor_value", "upload":
		return http.StatusUnprocessableEntity
	case "render":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := apperrors.Kind(err)
	status := statusFor(kind)
	body := gin.H{"error": err.Error(), "kind": kind}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		body["error"] = "internal server error"
		c.Error(err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "kind": "invalid_argument"})
}
