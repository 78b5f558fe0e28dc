package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type intentRepository struct {
	db *gorm.DB
}

func NewIntentRepository(db *gorm.DB) ports.IntentRepository {
	return &intentRepository{db: db}
}

func (r *intentRepository) Get(ctx context.Context, id string) (*domain.Intent, error) {
	var i domain.Intent
	err := dbFor(ctx, r.db).First(&i, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *intentRepository) Create(ctx context.Context, intent *domain.Intent) error {
	return dbFor(ctx, r.db).Create(intent).Error
}

func (r *intentRepository) Update(ctx context.Context, intent *domain.Intent) error {
	return dbFor(ctx, r.db).Save(intent).Error
}

func (r *intentRepository) OpenForStation(ctx context.Context, stationID string, connectorID int) (*domain.Intent, error) {
	var i domain.Intent
	err := dbFor(ctx, r.db).
		Where("charge_point_id = ? AND connector_id = ? AND status = ?", stationID, connectorID, domain.IntentPendingPayment).
		Order("created_at DESC").
		First(&i).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}
