package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEncryptionKeyMissing = errors.New("encryption_key_missing")
	ErrConfigNotFound       = errors.New("provider_config_not_found")
)

// ProviderConfig holds the sealed gateway credentials of one tenant.
type ProviderConfig struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrgID     snowflake.ID   `json:"org_id" gorm:"not null;uniqueIndex:ux_payment_provider_configs_org_provider,priority:1"`
	Provider  string         `json:"provider" gorm:"type:varchar(50);not null;uniqueIndex:ux_payment_provider_configs_org_provider,priority:2"`
	Config    datatypes.JSON `json:"-" gorm:"type:jsonb;not null"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
}

func (ProviderConfig) TableName() string { return "payment_provider_configs" }

type Repository interface {
	FindActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID, provider string) (*ProviderConfig, error)
	Upsert(ctx context.Context, db *gorm.DB, cfg *ProviderConfig) error
}

type Service interface {
	// GetActiveProviderConfig returns the decrypted adapter config of the
	// tenant, or the process-wide fallback when the tenant has none.
	GetActiveProviderConfig(ctx context.Context, orgID snowflake.ID, provider string) (map[string]any, error)
	UpsertProviderConfig(ctx context.Context, orgID snowflake.ID, provider string, config map[string]any) error
}
