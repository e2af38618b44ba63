package handlers

import (
	"errors"
	"log"
	"net/http"

	"DR-CONTRACTS/internal/engine"
	"DR-CONTRACTS/internal/rendercontext"
	"DR-CONTRACTS/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service and engine errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var parseErrs engine.ParseErrors
	var invalid *services.InvalidTemplateError

	switch {
	case errors.As(err, &parseErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "template is invalid", "errors": parseErrs.Messages()})
	case errors.Is(err, engine.ErrResourceLimit):
		log.Printf("Warning: render aborted: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": engine.ErrResourceLimit.Error(), "reason": "resource_limit"})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template", "errors": invalid.Errors})
	case errors.Is(err, rendercontext.ErrInvalidContext):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
	case errors.Is(err, services.ErrContextNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract context not found"})
	case errors.Is(err, services.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
	case errors.Is(err, services.ErrStarterNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Starter template not found"})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
