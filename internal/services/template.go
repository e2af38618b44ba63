package services

import (
	"errors"
	"fmt"
	"strings"

	"DR-CONTRACTS/internal/engine"
	"DR-CONTRACTS/internal/models"
	"DR-CONTRACTS/internal/starters"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrStarterNotFound  = errors.New("starter template not found")
	ErrInvalidTemplate  = errors.New("invalid template")
)

// InvalidTemplateError carries the validator messages for rejected content.
type InvalidTemplateError struct {
	Errors []string
}

func (e *InvalidTemplateError) Error() string {
	if len(e.Errors) == 0 {
		return ErrInvalidTemplate.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidTemplate.Error(), strings.Join(e.Errors, "; "))
}

func (e *InvalidTemplateError) Unwrap() error { return ErrInvalidTemplate }

type TemplateInput struct {
	OrganizationID string `json:"organization_id"`
	ContractTypeID string `json:"contract_type_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Content        string `json:"content"`
	IsActive       *bool  `json:"is_active"`
}

// TemplateUpdate changes only the fields that are set.
type TemplateUpdate struct {
	ContractTypeID *string `json:"contract_type_id"`
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Content        *string `json:"content"`
	IsActive       *bool   `json:"is_active"`
}

type TemplateFilter struct {
	OrganizationID string
	ContractTypeID string
	Active         *bool
}

// PreviewResult is the rendered HTML plus the context it was rendered with.
type PreviewResult struct {
	HTML      string         `json:"html"`
	Variables map[string]any `json:"variables"`
}

type TemplateService struct {
	db       *gorm.DB
	renderer *Renderer
	contexts *ContextService
	starters *starters.Catalog
}

func NewTemplateService(db *gorm.DB, renderer *Renderer, contexts *ContextService, catalog *starters.Catalog) *TemplateService {
	return &TemplateService{
		db:       db,
		renderer: renderer,
		contexts: contexts,
		starters: catalog,
	}
}

// Validate never fails: internal errors come back as an invalid result.
func (s *TemplateService) Validate(content string) engine.ValidationResult {
	return s.renderer.Validate(content)
}

func (s *TemplateService) checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &InvalidTemplateError{Errors: []string{"content is empty"}}
	}
	if res := s.renderer.Validate(content); !res.Valid {
		return &InvalidTemplateError{Errors: res.Errors}
	}
	return nil
}

func (s *TemplateService) Create(in TemplateInput) (*models.ContractTemplate, error) {
	if strings.TrimSpace(in.OrganizationID) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, &InvalidTemplateError{Errors: []string{"organization_id and name are required"}}
	}
	if err := s.checkContent(in.Content); err != nil {
		return nil, err
	}

	template := &models.ContractTemplate{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ContractTypeID: in.ContractTypeID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Content:        in.Content,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	if err := s.db.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) Get(templateID string) (*models.ContractTemplate, error) {
	var template models.ContractTemplate
	if err := s.db.First(&template, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) List(filter TemplateFilter) ([]models.ContractTemplate, error) {
	query := s.db.Model(&models.ContractTemplate{})
	if filter.OrganizationID != "" {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.ContractTypeID != "" {
		query = query.Where("contract_type_id = ?", filter.ContractTypeID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var templates []models.ContractTemplate
	if err := query.Order("is_default DESC, name ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) Update(templateID string, in TemplateUpdate) (*models.ContractTemplate, error) {
	template, err := s.Get(templateID)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		if err := s.checkContent(*in.Content); err != nil {
			return nil, err
		}
		template.Content = *in.Content
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, &InvalidTemplateError{Errors: []string{"name must not be empty"}}
		}
		template.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		template.Description = *in.Description
	}
	if in.ContractTypeID != nil && *in.ContractTypeID != template.ContractTypeID {
		template.ContractTypeID = *in.ContractTypeID
		// the default flag belongs to the previous contract type
		template.IsDefault = false
	}
	if in.IsActive != nil {
		template.IsActive = *in.IsActive
	}

	if err := s.db.Save(template).Error; err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return template, nil
}

// Duplicate copies a template under a new id. The copy is never the default.
func (s *TemplateService) Duplicate(templateID string) (*models.ContractTemplate, error) {
	source, err := s.Get(templateID)
	if err != nil {
		return nil, err
	}

	copied := &models.ContractTemplate{
		ID:             uuid.New().String(),
		OrganizationID: source.OrganizationID,
		ContractTypeID: source.ContractTypeID,
		Name:           source.Name + " (copie)",
		Description:    source.Description,
		Content:        source.Content,
		IsActive:       source.IsActive,
		StarterSlug:    source.StarterSlug,
	}
	if err := s.db.Create(copied).Error; err != nil {
		return nil, fmt.Errorf("failed to duplicate template: %w", err)
	}
	return copied, nil
}

// Delete soft-deletes the template.
func (s *TemplateService) Delete(templateID string) error {
	template, err := s.Get(templateID)
	if err != nil {
		return err
	}
	return s.db.Delete(template).Error
}

// SetDefault makes the template the only default for its organization and
// contract type.
func (s *TemplateService) SetDefault(templateID string) (*models.ContractTemplate, error) {
	template, err := s.Get(templateID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ContractTemplate{}).
			Where("organization_id = ? AND contract_type_id = ? AND id <> ?", template.OrganizationID, template.ContractTypeID, template.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(template).Update("is_default", true).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set default template: %w", err)
	}
	template.IsDefault = true
	return template, nil
}

// Preview renders a stored template against a contract snapshot, or the
// sample context when contractID is empty.
func (s *TemplateService) Preview(templateID, contractID string) (*PreviewResult, error) {
	template, err := s.Get(templateID)
	if err != nil {
		return nil, err
	}
	return s.PreviewContent(template.Content, contractID)
}

// PreviewContent renders unsaved editor content.
func (s *TemplateService) PreviewContent(content, contractID string) (*PreviewResult, error) {
	data, err := s.contexts.Load(contractID)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.Render(content, data)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{HTML: html, Variables: data}, nil
}

// Variables lists the context paths a stored template refers to.
func (s *TemplateService) Variables(templateID string) ([]string, error) {
	template, err := s.Get(templateID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Variables(template.Content)
}

func (s *TemplateService) Starters() []starters.Starter {
	if s.starters == nil {
		return nil
	}
	return s.starters.All()
}

// InstallStarter copies a bundled starter into an organization's templates.
func (s *TemplateService) InstallStarter(slug, organizationID, contractTypeID string) (*models.ContractTemplate, error) {
	if s.starters == nil {
		return nil, ErrStarterNotFound
	}
	starter, ok := s.starters.Get(slug)
	if !ok {
		return nil, ErrStarterNotFound
	}

	template, err := s.Create(TemplateInput{
		OrganizationID: organizationID,
		ContractTypeID: contractTypeID,
		Name:           starter.Name,
		Description:    starter.Description,
		Content:        starter.Content,
	})
	if err != nil {
		return nil, err
	}

	template.StarterSlug = starter.Slug
	if err := s.db.Model(template).Update("starter_slug", starter.Slug).Error; err != nil {
		return nil, fmt.Errorf("failed to record starter: %w", err)
	}
	return template, nil
}
