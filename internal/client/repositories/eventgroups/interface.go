package eventgroups

import (
	"context"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, g *models.EventGroup) error
	// GetByID returns common.ErrorNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.EventGroup, error)
	List(ctx context.Context, walletID string) ([]models.EventGroup, error)

	UpdateExpiry(ctx context.Context, id string, expiry time.Time) (bool, error)
	UpdateDraft(ctx context.Context, id string, isDraft bool) (bool, error)

	// DeleteByTypeAndProvider matches provider case-insensitively.
	DeleteByTypeAndProvider(ctx context.Context, walletID string, mode models.EventMode, provider string) (int, error)
	DeleteByType(ctx context.Context, walletID string, mode models.EventMode) (int, error)
	DeleteDrafts(ctx context.Context, walletID string) (int, error)
	DeleteExpiredBefore(ctx context.Context, walletID string, at time.Time) (int, error)
	DeleteAll(ctx context.Context, walletID string) (int, error)
}
