package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var ErrInvalidAnnotation = errors.New("invalid_annotation")

// Annotation is a free-form tag/value pair attached to a billing account.
type Annotation struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrgID     snowflake.ID `json:"org_id" gorm:"not null;index:idx_account_annotations_account,priority:1"`
	AccountID uuid.UUID    `json:"account_id" gorm:"not null;index:idx_account_annotations_account,priority:2"`
	Tag       string       `json:"tag" gorm:"type:varchar(128);not null"`
	Value     string       `json:"value" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Annotation) TableName() string { return "account_annotations" }

// Store lists and appends account annotations. Add must be visible to the
// next List on the same account.
type Store interface {
	List(ctx context.Context, orgID snowflake.ID, accountID uuid.UUID) ([]Annotation, error)
	Add(ctx context.Context, annotation *Annotation) error
}

// Find returns the first annotation carrying tag with a non-blank value.
func Find(annotations []Annotation, tag string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Tag == tag && strings.TrimSpace(a.Value) != "" {
			return a, true
		}
	}
	return Annotation{}, false
}
