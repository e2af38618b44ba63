package services

import (
	"errors"
	"fmt"

	"DR-CONTRACTS/internal/models"
	"DR-CONTRACTS/internal/rendercontext"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrContextNotFound = errors.New("render context not found")

// ContextService keeps the contract snapshots pushed by the host application.
type ContextService struct {
	db *gorm.DB
}

func NewContextService(db *gorm.DB) *ContextService {
	return &ContextService{db: db}
}

// Put validates and stores the snapshot for a contract, replacing any
// previous one.
func (s *ContextService) Put(contractID, organizationID string, raw []byte) (*models.ContractContext, error) {
	if contractID == "" {
		return nil, fmt.Errorf("%w: missing contract id", rendercontext.ErrInvalidContext)
	}
	if _, err := rendercontext.FromJSON(raw); err != nil {
		return nil, err
	}

	record := &models.ContractContext{
		ContractID:     contractID,
		OrganizationID: organizationID,
		Data:           string(raw),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"organization_id", "data", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save render context: %w", err)
	}
	return record, nil
}

func (s *ContextService) Get(contractID string) (*rendercontext.Context, error) {
	var record models.ContractContext
	if err := s.db.First(&record, "contract_id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContextNotFound
		}
		return nil, fmt.Errorf("failed to load render context: %w", err)
	}
	return rendercontext.FromJSON([]byte(record.Data))
}

// Load returns the map a template is rendered against. An empty contract id
// yields the sample context used by the editor preview.
func (s *ContextService) Load(contractID string) (map[string]any, error) {
	ctx := rendercontext.Sample()
	if contractID != "" {
		var err error
		if ctx, err = s.Get(contractID); err != nil {
			return nil, err
		}
	}
	return ctx.ToMap()
}
