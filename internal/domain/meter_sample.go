package domain

import "time"

// MeterSample is an append-only telemetry record produced by MeterValues
// handling. May be created without a bound session (orphan) if none is open
// at the sample's station/connector.
type MeterSample struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	StationID   string `gorm:"column:charge_point_id"`
	SessionID   *int64
	ConnectorID int
	Timestamp   time.Time
	EnergyWh    *int64
	PowerW      *float64
	CurrentA    *float64
	CreatedAt   time.Time
}

func (MeterSample) TableName() string { return "meter_samples" }
