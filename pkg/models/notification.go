package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationTypeNewQuotation  = "new_quotation"
	NotificationTypeStatusUpdated = "status_updated"
)

// Notification delivery status values.
const (
	NotificationStatusSent    = "sent"
	NotificationStatusPending = "pending"
	NotificationStatusFailed  = "failed"
)

// Notification records one webhook dispatch outcome. A new row is written
// per notification-worthy event; rows are never updated afterwards.
type Notification struct {
	ID             uuid.UUID  `json:"id"`
	QuotationID    *uuid.UUID `json:"quotation_id,omitempty"`
	MunicipalityID uuid.UUID  `json:"municipality_id"`
	Type           string     `json:"type"`
	Recipient      string     `json:"recipient"`
	Status         string     `json:"status"`
	Timestamp      time.Time  `json:"timestamp"`
}
