package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"DF-DOCGEN/internal/services"

	"github.com/gin-gonic/gin"
)

type LogsHandler struct {
	activityLogService *services.ActivityLogService
}

func NewLogsHandler(activityLogService *services.ActivityLogService) *LogsHandler {
	return &LogsHandler{
		activityLogService: activityLogService,
	}
}

func pageParams(c *gin.Context) (page, limit int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	return page, limit
}

// GetAllLogs returns activity logs, newest first, optionally filtered by
// method or path fragment.
func (h *LogsHandler) GetAllLogs(c *gin.Context) {
	page, limit := pageParams(c)
	logs, err := h.activityLogService.GetLogs(c.Request.Context(), c.Query("method"), c.Query("path"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetGenerationLogs lists generation calls with the template they targeted.
func (h *LogsHandler) GetGenerationLogs(c *gin.Context) {
	page, limit := pageParams(c)
	logs, err := h.activityLogService.GetLogs(c.Request.Context(), http.MethodPost, "/generate", page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	calls := make([]gin.H, 0, len(logs.Logs))
	for _, entry := range logs.Logs {
		calls = append(calls, gin.H{
			"timestamp":     entry.CreatedAt,
			"template_id":   extractTemplateID(entry.Path),
			"principal_id":  entry.PrincipalID,
			"status_code":   entry.StatusCode,
			"response_time": entry.ResponseTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"generations": calls,
		"total":       logs.Total,
		"page":        logs.Page,
		"limit":       logs.Limit,
		"total_pages": logs.TotalPages,
	})
}

// extractTemplateID reads the id out of "/api/v1/templates/<id>/generate".
// Type-based generation has no template id in the path.
func extractTemplateID(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part == "templates" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
