package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type stopCodeDeliveryRepository struct {
	db *gorm.DB
}

func NewStopCodeDeliveryRepository(db *gorm.DB) ports.StopCodeDeliveryRepository {
	return &stopCodeDeliveryRepository{db: db}
}

func (r *stopCodeDeliveryRepository) Create(ctx context.Context, delivery *domain.StopCodeDelivery) error {
	return dbFor(ctx, r.db).Create(delivery).Error
}
