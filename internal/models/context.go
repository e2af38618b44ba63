package models

import "time"

// ContractContext is the latest render context snapshot pushed for a contract.
type ContractContext struct {
	ContractID     string    `gorm:"type:varchar(64);primaryKey" json:"contract_id"`
	OrganizationID string    `gorm:"type:varchar(36);index" json:"organization_id"`
	Data           string    `gorm:"type:json" json:"data"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ContractContext) TableName() string {
	return "contract_contexts"
}
