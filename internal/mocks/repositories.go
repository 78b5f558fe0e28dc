// Package mocks provides Func-field test doubles for the ports interfaces,
// in the style of the teacher's internal/mocks package.
package mocks

import (
	"context"

	"github.com/seu-repo/csms/internal/domain"
)

// MockStationRepository is a mock implementation of ports.StationRepository.
type MockStationRepository struct {
	GetFunc    func(ctx context.Context, id string) (*domain.Station, error)
	UpsertFunc func(ctx context.Context, station *domain.Station) error
	ListFunc   func(ctx context.Context) ([]*domain.Station, error)
}

func (m *MockStationRepository) Get(ctx context.Context, id string) (*domain.Station, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) Upsert(ctx context.Context, station *domain.Station) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, station)
	}
	return nil
}

func (m *MockStationRepository) List(ctx context.Context) ([]*domain.Station, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

// MockIntentRepository is a mock implementation of ports.IntentRepository.
type MockIntentRepository struct {
	GetFunc           func(ctx context.Context, id string) (*domain.Intent, error)
	CreateFunc        func(ctx context.Context, intent *domain.Intent) error
	UpdateFunc        func(ctx context.Context, intent *domain.Intent) error
	OpenForStationFunc func(ctx context.Context, stationID string, connectorID int) (*domain.Intent, error)
}

func (m *MockIntentRepository) Get(ctx context.Context, id string) (*domain.Intent, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockIntentRepository) Create(ctx context.Context, intent *domain.Intent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, intent)
	}
	return nil
}

func (m *MockIntentRepository) Update(ctx context.Context, intent *domain.Intent) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, intent)
	}
	return nil
}

func (m *MockIntentRepository) OpenForStation(ctx context.Context, stationID string, connectorID int) (*domain.Intent, error) {
	if m.OpenForStationFunc != nil {
		return m.OpenForStationFunc(ctx, stationID, connectorID)
	}
	return nil, nil
}

// MockSessionRepository is a mock implementation of ports.SessionRepository.
type MockSessionRepository struct {
	GetFunc                    func(ctx context.Context, id int64) (*domain.Session, error)
	CreateFunc                 func(ctx context.Context, session *domain.Session) error
	UpdateFunc                 func(ctx context.Context, session *domain.Session) error
	OpenByStationConnectorFunc func(ctx context.Context, stationID string, connectorID int) (*domain.Session, error)
	OpenByStationFunc          func(ctx context.Context, stationID string) (*domain.Session, error)
	OpenByTransactionIDFunc    func(ctx context.Context, transactionID int64) (*domain.Session, error)
	ByIntentFunc               func(ctx context.Context, intentID string) (*domain.Session, error)
	ByEmailAndStopCodeHashFunc func(ctx context.Context, email, stopCodeHash string) (*domain.Session, error)
	ListFunc                   func(ctx context.Context) ([]*domain.Session, error)
	ActiveByStationFunc        func(ctx context.Context, stationID string) ([]*domain.Session, error)
}

func (m *MockSessionRepository) Get(ctx context.Context, id int64) (*domain.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) OpenByStationConnector(ctx context.Context, stationID string, connectorID int) (*domain.Session, error) {
	if m.OpenByStationConnectorFunc != nil {
		return m.OpenByStationConnectorFunc(ctx, stationID, connectorID)
	}
	return nil, nil
}

func (m *MockSessionRepository) OpenByStation(ctx context.Context, stationID string) (*domain.Session, error) {
	if m.OpenByStationFunc != nil {
		return m.OpenByStationFunc(ctx, stationID)
	}
	return nil, nil
}

func (m *MockSessionRepository) OpenByTransactionID(ctx context.Context, transactionID int64) (*domain.Session, error) {
	if m.OpenByTransactionIDFunc != nil {
		return m.OpenByTransactionIDFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockSessionRepository) ByIntent(ctx context.Context, intentID string) (*domain.Session, error) {
	if m.ByIntentFunc != nil {
		return m.ByIntentFunc(ctx, intentID)
	}
	return nil, nil
}

func (m *MockSessionRepository) ByEmailAndStopCodeHash(ctx context.Context, email, stopCodeHash string) (*domain.Session, error) {
	if m.ByEmailAndStopCodeHashFunc != nil {
		return m.ByEmailAndStopCodeHashFunc(ctx, email, stopCodeHash)
	}
	return nil, nil
}

func (m *MockSessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockSessionRepository) ActiveByStation(ctx context.Context, stationID string) ([]*domain.Session, error) {
	if m.ActiveByStationFunc != nil {
		return m.ActiveByStationFunc(ctx, stationID)
	}
	return nil, nil
}

// MockMeterSampleRepository is a mock implementation of ports.MeterSampleRepository.
type MockMeterSampleRepository struct {
	CreateFunc               func(ctx context.Context, sample *domain.MeterSample) error
	FirstAndLastEnergyWhFunc func(ctx context.Context, sessionID int64) (*int64, *int64, error)
}

func (m *MockMeterSampleRepository) Create(ctx context.Context, sample *domain.MeterSample) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sample)
	}
	return nil
}

func (m *MockMeterSampleRepository) FirstAndLastEnergyWh(ctx context.Context, sessionID int64) (*int64, *int64, error) {
	if m.FirstAndLastEnergyWhFunc != nil {
		return m.FirstAndLastEnergyWhFunc(ctx, sessionID)
	}
	return nil, nil, nil
}

// MockStopCodeDeliveryRepository is a mock implementation of ports.StopCodeDeliveryRepository.
type MockStopCodeDeliveryRepository struct {
	CreateFunc func(ctx context.Context, delivery *domain.StopCodeDelivery) error
	Created    []*domain.StopCodeDelivery
}

func (m *MockStopCodeDeliveryRepository) Create(ctx context.Context, delivery *domain.StopCodeDelivery) error {
	m.Created = append(m.Created, delivery)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, delivery)
	}
	return nil
}
