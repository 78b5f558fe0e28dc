package domain

import "time"

// Session is a charging transaction. Its own primary key doubles as the
// station-facing numeric transactionId, which is why it's an auto-assigned
// integer rather than an opaque string like Station.ID or Intent.ID.
type Session struct {
	ID            int64  `gorm:"primaryKey;autoIncrement;column:id"`
	StationID     string `gorm:"column:charge_point_id"`
	ConnectorID   *int
	TransactionID *int64 `gorm:"uniqueIndex"`
	UserTag       *string
	Email         string
	IntentID      *string

	StartedAt  time.Time
	FinishedAt *time.Time

	MeterStartWh *int64
	MeterStopWh  *int64
	EnergyKWh    *float64
	CostHUF      *float64

	StopCodeHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Session) TableName() string { return "charge_sessions" }

// Open reports whether this session hasn't finished.
func (s *Session) Open() bool { return s.FinishedAt == nil }

// EffectiveTransactionID returns the station-facing transaction id this
// session is known under, defaulting to its own primary key once assigned.
func (s *Session) EffectiveTransactionID() int64 {
	if s.TransactionID != nil {
		return *s.TransactionID
	}
	return s.ID
}
