package wallets

import (
	"context"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
)

type Repository interface {
	// GetByLabel returns common.ErrorNotFound when no wallet carries label.
	GetByLabel(ctx context.Context, label string) (*models.Wallet, error)
	Create(ctx context.Context, w *models.Wallet) error
	DeleteAll(ctx context.Context) error
}
