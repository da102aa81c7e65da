package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	annotationdomain "github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

// MandateLocator reads the mandate reference stored on an account.
type MandateLocator struct {
	store annotationdomain.Store
}

func NewMandateLocator(store annotationdomain.Store) *MandateLocator {
	return &MandateLocator{store: store}
}

// ResolveMandate returns the first non-blank mandate annotation of the
// account. A missing mandate is not an error.
func (l *MandateLocator) ResolveMandate(ctx context.Context, orgID snowflake.ID, accountID uuid.UUID) (string, bool, error) {
	annotations, err := l.store.List(ctx, orgID, accountID)
	if err != nil {
		return "", false, err
	}
	found, ok := annotationdomain.Find(annotations, domain.MandateAnnotationTag)
	if !ok {
		return "", false, nil
	}
	return found.Value, true, nil
}
