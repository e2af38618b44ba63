package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	logs := NewActivityLogService(db)

	r := gin.New()
	r.Use(logs.LoggingMiddleware())
	r.POST("/api/v1/contract-templates/:id/generate", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/api/v1/logs", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/v1/contract-templates/tpl-1/generate", strings.NewReader(`{"contract_id":"CTR-7"}`)),
		httptest.NewRequest(http.MethodGet, "/api/v1/logs?page=2", nil),
	}
	for _, req := range requests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		logs.Wait()
	}

	all, total, err := logs.GetLogs(LogFilter{}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 logs, got %d", total)
	}

	posts, _, err := logs.GetLogs(LogFilter{Method: "post"}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 POST log, got %d", len(posts))
	}
	entry := posts[0]
	if entry.RequestBody != `{"contract_id":"CTR-7"}` || entry.StatusCode != http.StatusCreated || entry.TemplateID != "tpl-1" {
		t.Fatalf("unexpected log entry %+v", entry)
	}

	byTemplate, _, err := logs.GetLogs(LogFilter{TemplateID: "tpl-1"}, 10, 0)
	if err != nil || len(byTemplate) != 1 {
		t.Fatalf("template filter: %d logs, err %v", len(byTemplate), err)
	}

	stats, err := logs.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRequests != 2 || stats.Methods["GET"] != 1 || stats.StatusCodes[http.StatusCreated] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
