package domain

// Location is a physical site a Station is installed at. The core only
// reads/writes it as a denormalized attribute on Station lookups; it owns no
// lifecycle of its own beyond simple CRUD from the REST surface.
type Location struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	StationID string `gorm:"column:charge_point_id;uniqueIndex"`
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

func (Location) TableName() string { return "locations" }
