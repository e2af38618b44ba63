package models

import (
	"time"

	"gorm.io/gorm"
)

// ContractTemplate is a tenant-owned HTML template bound to a contract type.
type ContractTemplate struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:varchar(36);not null;index:idx_contract_templates_org_type" json:"organization_id"`
	ContractTypeID string         `gorm:"type:varchar(36);index:idx_contract_templates_org_type" json:"contract_type_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Content        string         `gorm:"type:longtext;not null" json:"content"`
	IsDefault      bool           `gorm:"not null" json:"is_default"`
	IsActive       bool           `gorm:"not null" json:"is_active"`
	StarterSlug    string         `gorm:"type:varchar(64)" json:"starter_slug,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Documents []ContractDocument `gorm:"foreignKey:TemplateID" json:"documents,omitempty"`
}

func (ContractTemplate) TableName() string {
	return "contract_templates"
}

const (
	DocumentStatusCompleted = "completed"
	DocumentStatusHTMLOnly  = "html_only"
)

// ContractDocument is a rendered contract stored as HTML and, when the
// converter is reachable, as PDF.
type ContractDocument struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID string         `gorm:"type:varchar(36);not null;index" json:"template_id"`
	ContractID string         `gorm:"type:varchar(64);not null;index" json:"contract_id"`
	Filename   string         `gorm:"type:varchar(255);not null" json:"filename"`
	HTMLPath   string         `gorm:"type:text;not null" json:"html_path"`
	PDFPath    string         `gorm:"type:text" json:"pdf_path,omitempty"`
	FileSize   int64          `json:"file_size"`
	Status     string         `gorm:"type:varchar(32)" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ContractDocument) TableName() string {
	return "contract_documents"
}
