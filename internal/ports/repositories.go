package ports

import (
	"context"

	"github.com/seu-repo/csms/internal/domain"
)

// StationRepository persists Station rows.
type StationRepository interface {
	Get(ctx context.Context, id string) (*domain.Station, error)
	Upsert(ctx context.Context, station *domain.Station) error
	List(ctx context.Context) ([]*domain.Station, error)
}

// IntentRepository persists Intent rows.
type IntentRepository interface {
	Get(ctx context.Context, id string) (*domain.Intent, error)
	Create(ctx context.Context, intent *domain.Intent) error
	Update(ctx context.Context, intent *domain.Intent) error
	// OpenForStation returns a non-terminal intent for (station, connector), if any.
	OpenForStation(ctx context.Context, stationID string, connectorID int) (*domain.Intent, error)
}

// SessionRepository persists Session rows.
type SessionRepository interface {
	Get(ctx context.Context, id int64) (*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) error
	Update(ctx context.Context, session *domain.Session) error
	// OpenByStationConnector returns the open session (finished_at IS NULL) for
	// (station, connector), if any.
	OpenByStationConnector(ctx context.Context, stationID string, connectorID int) (*domain.Session, error)
	// OpenByStation returns any open session for a station, regardless of connector.
	OpenByStation(ctx context.Context, stationID string) (*domain.Session, error)
	// OpenByTransactionID looks up an open session by its assigned station-facing
	// transaction id.
	OpenByTransactionID(ctx context.Context, transactionID int64) (*domain.Session, error)
	// ByIntent returns the session created for an intent, if one exists.
	ByIntent(ctx context.Context, intentID string) (*domain.Session, error)
	ByEmailAndStopCodeHash(ctx context.Context, email, stopCodeHash string) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
	ActiveByStation(ctx context.Context, stationID string) ([]*domain.Session, error)
}

// MeterSampleRepository persists MeterSample rows and supports the energy
// fallback computation StopTransaction needs when meterStart is absent.
type MeterSampleRepository interface {
	Create(ctx context.Context, sample *domain.MeterSample) error
	// FirstAndLastEnergyWh returns the first and last cumulative-energy readings
	// attached to a session, ordered by sample timestamp.
	FirstAndLastEnergyWh(ctx context.Context, sessionID int64) (first, last *int64, err error)
}

// LocationRepository persists Location rows.
type LocationRepository interface {
	Get(ctx context.Context, stationID string) (*domain.Location, error)
	Upsert(ctx context.Context, loc *domain.Location) error
}

// StopCodeDeliveryRepository appends the operational audit log of
// out-of-band stop-code delivery attempts. Never holds plaintext.
type StopCodeDeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.StopCodeDelivery) error
}

// Transactor runs fn inside a single database transaction. Repository calls
// made with the context fn receives participate in that transaction; a
// returned error rolls the whole thing back. Read-modify-write sequences
// that must be atomic against concurrent callers (e.g. a Stripe webhook
// retried at-least-once) wrap themselves in WithinTransaction rather than
// issuing their repository calls as separate, unguarded statements.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
