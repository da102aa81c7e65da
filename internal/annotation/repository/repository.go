package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/railzwaylabs/directdebit/internal/clock"
	"gorm.io/gorm"
)

type repo struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock clock.Clock
}

func New(db *gorm.DB, node *snowflake.Node, clk clock.Clock) domain.Store {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &repo{db: db, node: node, clock: clk}
}

func (r *repo) List(ctx context.Context, orgID snowflake.ID, accountID uuid.UUID) ([]domain.Annotation, error) {
	var items []domain.Annotation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND account_id = ?", orgID, accountID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Add(ctx context.Context, annotation *domain.Annotation) error {
	if annotation == nil || annotation.OrgID == 0 || annotation.AccountID == uuid.Nil {
		return domain.ErrInvalidAnnotation
	}
	annotation.Tag = strings.TrimSpace(annotation.Tag)
	if annotation.Tag == "" {
		return domain.ErrInvalidAnnotation
	}
	if annotation.ID == 0 {
		annotation.ID = r.node.Generate()
	}
	if annotation.CreatedAt.IsZero() {
		annotation.CreatedAt = r.clock.Now(ctx)
	}
	return r.db.WithContext(ctx).Create(annotation).Error
}
