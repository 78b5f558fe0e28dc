package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) ports.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Get(ctx context.Context, stationID string) (*domain.Location, error) {
	var l domain.Location
	err := dbFor(ctx, r.db).First(&l, "charge_point_id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) Upsert(ctx context.Context, loc *domain.Location) error {
	return dbFor(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "charge_point_id"}},
		UpdateAll: true,
	}).Create(loc).Error
}
