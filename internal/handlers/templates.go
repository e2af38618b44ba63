package handlers

import (
	"net/http"
	"strconv"

	"DR-CONTRACTS/internal/engine"
	"DR-CONTRACTS/internal/services"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templates *services.TemplateService
}

func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type ValidateRequest struct {
	Content string `json:"content"`
}

type PreviewRequest struct {
	Content    string `json:"content" binding:"required"`
	ContractID string `json:"contract_id"`
}

type InstallStarterRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	ContractTypeID string `json:"contract_type_id"`
}

type VariablesResponse struct {
	Variables []string `json:"variables"`
}

// Validate always answers 200; structural problems are in the body.
func (h *TemplateHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, engine.ValidationResult{Valid: false, Errors: []string{"invalid request body"}})
		return
	}
	c.JSON(http.StatusOK, h.templates.Validate(req.Content))
}

func (h *TemplateHandler) PreviewContent(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}
	res, err := h.templates.PreviewContent(req.Content, req.ContractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *TemplateHandler) Preview(c *gin.Context) {
	res, err := h.templates.Preview(c.Param("id"), c.Query("contract_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *TemplateHandler) Variables(c *gin.Context) {
	vars, err := h.templates.Variables(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if vars == nil {
		vars = []string{}
	}
	c.JSON(http.StatusOK, VariablesResponse{Variables: vars})
}

func (h *TemplateHandler) List(c *gin.Context) {
	filter := services.TemplateFilter{
		OrganizationID: c.Query("organization_id"),
		ContractTypeID: c.Query("contract_type_id"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
			return
		}
		filter.Active = &active
	}

	templates, err := h.templates.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "total": len(templates)})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req services.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	template, err := h.templates.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req services.TemplateUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	template, err := h.templates.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func (h *TemplateHandler) Duplicate(c *gin.Context) {
	template, err := h.templates.Duplicate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (h *TemplateHandler) SetDefault(c *gin.Context) {
	template, err := h.templates.SetDefault(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) ListStarters(c *gin.Context) {
	list := h.templates.Starters()
	c.JSON(http.StatusOK, gin.H{"starters": list, "total": len(list)})
}

func (h *TemplateHandler) InstallStarter(c *gin.Context) {
	var req InstallStarterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id is required"})
		return
	}
	template, err := h.templates.InstallStarter(c.Param("slug"), req.OrganizationID, req.ContractTypeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}
