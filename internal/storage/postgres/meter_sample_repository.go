package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type meterSampleRepository struct {
	db *gorm.DB
}

func NewMeterSampleRepository(db *gorm.DB) ports.MeterSampleRepository {
	return &meterSampleRepository{db: db}
}

func (r *meterSampleRepository) Create(ctx context.Context, sample *domain.MeterSample) error {
	return dbFor(ctx, r.db).Create(sample).Error
}

func (r *meterSampleRepository) FirstAndLastEnergyWh(ctx context.Context, sessionID int64) (first, last *int64, err error) {
	var firstSample domain.MeterSample
	err = dbFor(ctx, r.db).
		Where("session_id = ? AND energy_wh IS NOT NULL", sessionID).
		Order("timestamp ASC").
		First(&firstSample).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var lastSample domain.MeterSample
	err = dbFor(ctx, r.db).
		Where("session_id = ? AND energy_wh IS NOT NULL", sessionID).
		Order("timestamp DESC").
		First(&lastSample).Error
	if err != nil {
		return nil, nil, err
	}

	return firstSample.EnergyWh, lastSample.EnergyWh, nil
}
