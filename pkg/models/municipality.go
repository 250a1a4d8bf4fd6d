package models

import (
	"time"

	"github.com/google/uuid"
)

// Municipality is the tenant aggregate. All tenant-scoped data (users,
// quotations, access logs, notifications) cascades on delete.
type Municipality struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	CreatedAt time.Time `json:"created_at"`
}
