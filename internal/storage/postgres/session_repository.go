package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/seu-repo/csms/internal/domain"
	"github.com/seu-repo/csms/internal/ports"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*domain.Session, error) {
	var s domain.Session
	err := dbFor(ctx, r.db).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return dbFor(ctx, r.db).Create(session).Error
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.Session) error {
	return dbFor(ctx, r.db).Save(session).Error
}

func (r *sessionRepository) OpenByStationConnector(ctx context.Context, stationID string, connectorID int) (*domain.Session, error) {
	var s domain.Session
	err := dbFor(ctx, r.db).
		Where("charge_point_id = ? AND connector_id = ? AND finished_at IS NULL", stationID, connectorID).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) OpenByStation(ctx context.Context, stationID string) (*domain.Session, error) {
	var s domain.Session
	err := dbFor(ctx, r.db).
		Where("charge_point_id = ? AND finished_at IS NULL", stationID).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) OpenByTransactionID(ctx context.Context, transactionID int64) (*domain.Session, error) {
	var s domain.Session
	err := dbFor(ctx, r.db).
		Where("transaction_id = ? AND finished_at IS NULL", transactionID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) ByIntent(ctx context.Context, intentID string) (*domain.Session, error) {
	var s domain.Session
	err := dbFor(ctx, r.db).First(&s, "intent_id = ?", intentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) ByEmailAndStopCodeHash(ctx context.Context, email, stopCodeHash string) (*domain.Session, error) {
	var s domain.Session
	err := dbFor(ctx, r.db).
		Where("email = ? AND stop_code_hash = ? AND finished_at IS NULL", email, stopCodeHash).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := dbFor(ctx, r.db).Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) ActiveByStation(ctx context.Context, stationID string) ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := dbFor(ctx, r.db).
		Where("charge_point_id = ? AND finished_at IS NULL", stationID).
		Find(&sessions).Error
	return sessions, err
}
