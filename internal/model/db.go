package model

import "time"

type CheckoutStatus string

const (
	CheckoutOpen     CheckoutStatus = "open"
	CheckoutPaid     CheckoutStatus = "paid"
	CheckoutFailed   CheckoutStatus = "failed"
	CheckoutCanceled CheckoutStatus = "canceled"
	CheckoutExpired  CheckoutStatus = "expired"
)

// Final reports whether no further payment transition is expected.
func (s CheckoutStatus) Final() bool {
	return s != CheckoutOpen
}

type CheckoutOrder struct {
	ID              string         `gorm:"primaryKey;size:36;not null"`
	CartID          string         `gorm:"size:36;index;not null"`
	WooOrderID      int64          `gorm:"index;not null"`
	MolliePaymentID string         `gorm:"size:64;index"` // tr_xxx
	Status          CheckoutStatus `gorm:"size:32;index;not null"`
	Amount          string         `gorm:"size:32;not null"` // grand total, 2 decimals
	Currency        string         `gorm:"size:8;not null"`
	Email           string         `gorm:"size:255"`
	CustomerType    string         `gorm:"size:8;not null"` // b2b, b2c
	CheckoutURL     string         `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"` // <payment id>:<status>
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
