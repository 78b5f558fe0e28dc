package domain

import "time"

// StationStatus is the coarse status the core tracks for a charging station.
type StationStatus string

const (
	StationAvailable StationStatus = "available"
	StationPreparing StationStatus = "preparing"
	StationCharging  StationStatus = "charging"
	StationFinishing StationStatus = "finishing"
	StationFaulted   StationStatus = "faulted"
	StationUnavailable StationStatus = "unavailable"
	StationUnknown   StationStatus = "unknown"
)

// OfflineThreshold is how long without a frame before a Station is reported
// as offline regardless of its stored status.
const OfflineThreshold = 120 * time.Second

// Station is a physical charging device identified by its self-declared
// serial number. Created on first BootNotification, never deleted by the
// core.
type Station struct {
	ID             string `gorm:"primaryKey;column:identity"`
	Vendor         string
	Model          string
	Serial         string
	FirmwareVersion string
	Status         StationStatus `gorm:"type:varchar(32)"`
	LastSeenAt     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Station) TableName() string { return "charge_points" }

// IsOffline reports the derived offline projection used by the
// GET /charge-points read path: a station that hasn't spoken in over
// OfflineThreshold is offline no matter what status it last reported.
func (s *Station) IsOffline(now time.Time) bool {
	return now.Sub(s.LastSeenAt) > OfflineThreshold
}
