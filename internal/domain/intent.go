package domain

import "time"

type IntentStatus string

const (
	IntentPendingPayment IntentStatus = "pending_payment"
	IntentPaid           IntentStatus = "paid"
	IntentExpired        IntentStatus = "expired"
	IntentCancelled      IntentStatus = "cancelled"
	IntentFailed         IntentStatus = "failed"
)

// IntentTTL is how long a freshly created Intent stays payable before it
// expires.
const IntentTTL = 15 * time.Minute

// Intent is a pre-charge record representing an anonymous user's commitment
// to pay a refundable hold on a specific station/connector.
type Intent struct {
	ID              string `gorm:"primaryKey;column:id"`
	StationID       string `gorm:"column:charge_point_id"`
	ConnectorID     int
	Email           string
	Status          IntentStatus `gorm:"type:varchar(32)"`
	HoldAmountHUF   int64
	Currency        string
	ProviderName    string
	ProviderRef     string
	LastError       string
	ExpiresAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Intent) TableName() string { return "charging_intents" }

func (i *Intent) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
