package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/logger"
	"DF-DOCGEN/internal/middleware"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityLogService struct {
	logs    repository.ActivityLogRepository
	log     *logger.Logger
	pending sync.WaitGroup
}

func NewActivityLogService(db *gorm.DB, log *logger.Logger) *ActivityLogService {
	return &ActivityLogService{
		logs: repository.NewActivityLogRepository(db),
		log:  log.With("component", "activity_log"),
	}
}

type LogPage struct {
	Logs       []models.ActivityLog `json:"logs"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// LogRequest records one finished request. Request bodies are never stored
// since they carry payload values.
func (s *ActivityLogService) LogRequest(c *gin.Context, statusCode int, responseTime time.Duration) {
	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = c.Request.RemoteAddr
	}
	principalID, _ := middleware.PrincipalID(c)

	entry := &models.ActivityLog{
		ID:           uuid.New().String(),
		Method:       c.Request.Method,
		Path:         c.Request.URL.Path,
		PrincipalID:  principalID,
		UserAgent:    c.Request.UserAgent(),
		IPAddress:    clientIP,
		StatusCode:   statusCode,
		ResponseTime: responseTime.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	// don't block the request on the write
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.logs.Create(dbctx.New(context.Background()), entry); err != nil {
			s.log.Warn("failed to save activity log", "path", entry.Path, "error", err)
		}
	}()
}

// Flush waits for in-flight log writes.
func (s *ActivityLogService) Flush() {
	s.pending.Wait()
}

func (s *ActivityLogService) GetLogs(ctx context.Context, method, path string, page, limit int) (*LogPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	filter := repository.ActivityLogFilter{Method: strings.ToUpper(method), Path: path}
	logs, total, err := s.logs.List(dbctx.New(ctx), filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &LogPage{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// LoggingMiddleware records every request after it has been handled.
func (s *ActivityLogService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.LogRequest(c, c.Writer.Status(), time.Since(start))
	}
}
