package greencards

import (
	"context"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
)

// Repository stores green cards together with their origins, origin hints
// and credentials. Insert expects every ID to be assigned.
type Repository interface {
	Insert(ctx context.Context, gc *models.GreenCard) error
	List(ctx context.Context, walletID string) ([]models.GreenCard, error)
	CountByType(ctx context.Context, walletID string, t models.GreenCardType) (int, error)

	DeleteByID(ctx context.Context, id string) error
	DeleteByType(ctx context.Context, walletID string, t models.GreenCardType) (int, error)
	DeleteAll(ctx context.Context, walletID string) (int, error)
}
