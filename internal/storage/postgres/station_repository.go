package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type stationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) ports.StationRepository {
	return &stationRepository{db: db}
}

func (r *stationRepository) Get(ctx context.Context, id string) (*domain.Station, error) {
	var s domain.Station
	err := dbFor(ctx, r.db).First(&s, "identity = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stationRepository) Upsert(ctx context.Context, station *domain.Station) error {
	return dbFor(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		UpdateAll: true,
	}).Create(station).Error
}

func (r *stationRepository) List(ctx context.Context) ([]*domain.Station, error) {
	var stations []*domain.Station
	err := dbFor(ctx, r.db).Find(&stations).Error
	return stations, err
}
