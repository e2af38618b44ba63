package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"DR-CONTRACTS/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxLoggedBody = 10000

type ActivityLogService struct {
	db      *gorm.DB
	pending sync.WaitGroup
}

func NewActivityLogService(db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: db}
}

type LogStats struct {
	TotalRequests int64            `json:"total_requests"`
	Methods       map[string]int64 `json:"methods"`
	Paths         map[string]int64 `json:"paths"`
	StatusCodes   map[int]int64    `json:"status_codes"`
}

func (s *ActivityLogService) LogRequest(c *gin.Context, statusCode int, responseTime time.Duration) {
	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = c.Request.RemoteAddr
	}

	queryParams := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0]
		}
	}
	queryParamsJSON, _ := json.Marshal(queryParams)

	var requestBody string
	if body, exists := c.Get("request_body"); exists {
		if bodyStr, ok := body.(string); ok {
			requestBody = bodyStr
		}
	}

	activityLog := &models.ActivityLog{
		ID:           uuid.New().String(),
		Method:       c.Request.Method,
		Path:         c.Request.URL.Path,
		TemplateID:   c.Param("id"),
		UserAgent:    c.Request.UserAgent(),
		IPAddress:    clientIP,
		RequestBody:  requestBody,
		QueryParams:  string(queryParamsJSON),
		StatusCode:   statusCode,
		ResponseTime: responseTime.Milliseconds(),
	}
	if !strings.Contains(c.FullPath(), "/contract-templates/:id") {
		activityLog.TemplateID = ""
	}

	// Save in the background, the request must not wait on the log write
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.db.Create(activityLog).Error; err != nil {
			log.Printf("Failed to save activity log: %v", err)
		}
	}()
}

// Wait blocks until every queued log entry has been written.
func (s *ActivityLogService) Wait() {
	s.pending.Wait()
}

// LogFilter narrows a log query. Zero fields match everything.
type LogFilter struct {
	Method     string
	Path       string
	TemplateID string
}

func (s *ActivityLogService) GetLogs(filter LogFilter, limit int, offset int) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	query := s.db.Model(&models.ActivityLog{})
	if filter.Method != "" {
		query = query.Where("method = ?", strings.ToUpper(filter.Method))
	}
	if filter.Path != "" {
		query = query.Where("path LIKE ?", "%"+filter.Path+"%")
	}
	if filter.TemplateID != "" {
		query = query.Where("template_id = ?", filter.TemplateID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch logs: %w", err)
	}

	return logs, total, nil
}

func (s *ActivityLogService) GetStats() (*LogStats, error) {
	stats := &LogStats{
		Methods:     make(map[string]int64),
		Paths:       make(map[string]int64),
		StatusCodes: make(map[int]int64),
	}
	if err := s.db.Model(&models.ActivityLog{}).Count(&stats.TotalRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to count logs: %w", err)
	}

	var byMethod []struct {
		Method string
		Count  int64
	}
	if err := s.db.Model(&models.ActivityLog{}).Select("method, count(*) as count").Group("method").Scan(&byMethod).Error; err != nil {
		return nil, fmt.Errorf("failed to group logs by method: %w", err)
	}
	for _, row := range byMethod {
		stats.Methods[row.Method] = row.Count
	}

	var byPath []struct {
		Path  string
		Count int64
	}
	if err := s.db.Model(&models.ActivityLog{}).Select("path, count(*) as count").Group("path").Scan(&byPath).Error; err != nil {
		return nil, fmt.Errorf("failed to group logs by path: %w", err)
	}
	for _, row := range byPath {
		stats.Paths[row.Path] = row.Count
	}

	var byStatus []struct {
		StatusCode int
		Count      int64
	}
	if err := s.db.Model(&models.ActivityLog{}).Select("status_code, count(*) as count").Group("status_code").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group logs by status: %w", err)
	}
	for _, row := range byStatus {
		stats.StatusCodes[row.StatusCode] = row.Count
	}

	return stats, nil
}

// LoggingMiddleware records every request once it has been handled.
func (s *ActivityLogService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if (c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut) && c.Request.Body != nil {
			bodyBytes, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

				if len(bodyBytes) > 0 {
					if len(bodyBytes) > maxLoggedBody {
						c.Set("request_body", fmt.Sprintf("[Large body: %d bytes] %s...", len(bodyBytes), string(bodyBytes[:100])))
					} else {
						c.Set("request_body", string(bodyBytes))
					}
				}
			}
		}

		c.Next()

		s.LogRequest(c, c.Writer.Status(), time.Since(start))
	}
}
