package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"DR-CONTRACTS/internal/services"

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

type LogsResponse struct {
	Logs       interface{} `json:"logs"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func pagination(c *gin.Context) (limit, page int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	return limit, page
}

// GetAllLogs returns activity logs, newest first, optionally filtered by
// method, path fragment or template.
func (h *LogsHandler) GetAllLogs(c *gin.Context) {
	limit, page := pagination(c)
	filter := services.LogFilter{
		Method:     c.Query("method"),
		Path:       c.Query("path"),
		TemplateID: c.Query("template_id"),
	}

	logs, total, err := h.activityLogService.GetLogs(filter, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, LogsResponse{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}

func (h *LogsHandler) GetLogStats(c *gin.Context) {
	stats, err := h.activityLogService.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch log stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetHistory lists the template writes and document generations that carried
// a request body.
func (h *LogsHandler) GetHistory(c *gin.Context) {
	limit, page := pagination(c)
	logs, total, err := h.activityLogService.GetLogs(services.LogFilter{
		Method:     http.MethodPost,
		TemplateID: c.Query("template_id"),
	}, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	history := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		if log.RequestBody == "" {
			continue
		}
		entry := gin.H{
			"timestamp":     log.CreatedAt,
			"path":          log.Path,
			"template_id":   log.TemplateID,
			"ip_address":    log.IPAddress,
			"user_agent":    log.UserAgent,
			"response_time": log.ResponseTime,
		}
		var body interface{}
		if err := json.Unmarshal([]byte(log.RequestBody), &body); err == nil {
			entry["request"] = body
		} else {
			entry["raw_body"] = log.RequestBody
		}
		history = append(history, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"history": history,
		"total":   total,
		"page":    page,
	})
}
