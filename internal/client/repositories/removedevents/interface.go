package removedevents

import (
	"context"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, e *models.RemovedEvent) error
	List(ctx context.Context, walletID string) ([]models.RemovedEvent, error)
	DeleteByReason(ctx context.Context, walletID string, reason models.RemovalReason) (int, error)
	DeleteAll(ctx context.Context, walletID string) (int, error)
}
