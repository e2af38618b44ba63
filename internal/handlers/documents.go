package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"DR-CONTRACTS/internal/services"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documents *services.DocumentService
	contexts  *services.ContextService
}

func NewDocumentHandler(documents *services.DocumentService, contexts *services.ContextService) *DocumentHandler {
	return &DocumentHandler{documents: documents, contexts: contexts}
}

type GenerateRequest struct {
	ContractID string `json:"contract_id" binding:"required"`
}

// PutContext stores the render context snapshot for a contract. The body is
// the context itself.
func (h *DocumentHandler) PutContext(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Render context is required"})
		return
	}
	record, err := h.contexts.Put(c.Param("contractId"), c.Query("organization_id"), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract_id": record.ContractID,
		"updated_at":  record.UpdatedAt,
		"message":     "Render context saved",
	})
}

func (h *DocumentHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contract_id is required"})
		return
	}
	document, err := h.documents.Generate(c.Request.Context(), c.Param("id"), req.ContractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, document)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	reader, document, contentType, err := h.documents.GetDocumentReader(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	filename := document.Filename
	if contentType != "application/pdf" {
		filename = document.ID + ".html"
	}
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
}

// DownloadURL hands out a signed link when documents live in a bucket.
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	url, expiry, err := h.documents.SignedURL(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSignedURLUnsupported) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(expiry.Seconds())})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
