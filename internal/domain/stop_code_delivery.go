package domain

import "time"

// StopCodeDelivery is an append-only log of out-of-band stop-code delivery
// attempts. Never holds plaintext beyond the single delivery call that wrote
// it; the column exists purely for operational audit.
type StopCodeDelivery struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	SessionID int64
	Channel   string
	Recipient string
	SentAt    time.Time
	Error     string
}

func (StopCodeDelivery) TableName() string { return "stop_code_deliveries" }
