package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessLog status values.
const (
	AccessStatusSuccess = "success"
	AccessStatusFailure = "failure"
)

// AccessLog is an append-only audit record written once per authenticated
// API call, after the response status is known. Never mutated or deleted.
type AccessLog struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	MunicipalityID *uuid.UUID `json:"municipality_id,omitempty"`
	Endpoint       string     `json:"endpoint"`
	Method         string     `json:"method"`
	IP             string     `json:"ip"`
	Status         string     `json:"status"`
	Timestamp      time.Time  `json:"timestamp"`
}
