package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
)

// Quotation status values. A quotation always starts as pending. No guard
// prevents moving between approved/rejected/pending again; only a real
// status change triggers a notification.
const (
	QuotationStatusPending  = "pending"
	QuotationStatusApproved = "approved"
	QuotationStatusRejected = "rejected"
)

// ValidQuotationStatuses contains all accepted status values.
var ValidQuotationStatuses = []string{
	QuotationStatusPending,
	QuotationStatusApproved,
	QuotationStatusRejected,
}

// IsValidQuotationStatus checks if the given status is valid.
func IsValidQuotationStatus(status string) bool {
	for _, s := range ValidQuotationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

const maxProductLength = 500

// Quotation is a priced product request enriched with a market-price
// analysis at creation time. Enrichment fields are written exactly once by
// the creation pipeline and never recomputed on update.
type Quotation struct {
	ID             uuid.UUID `json:"id"`
	MunicipalityID uuid.UUID `json:"municipality_id"`
	UserID         uuid.UUID `json:"user_id"`
	Product        string    `json:"product"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TotalPrice     float64   `json:"total_price"`
	Status         string    `json:"status"`

	AverageMarketPrice float64  `json:"average_market_price"`
	PriceRangeMin      float64  `json:"price_range_min"`
	PriceRangeMax      float64  `json:"price_range_max"`
	MarketAnalysis     string   `json:"market_analysis"`
	Recommendations    []string `json:"recommendations"`
	AnalysisConfidence float64  `json:"analysis_confidence"`
	PriceReport        string   `json:"price_report"`

	WebhookSent bool      `json:"webhook_sent"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuotationInput is the client-supplied portion of a quotation. Tenant and
// creator are always stamped server-side from the authenticated principal.
type QuotationInput struct {
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Validate checks the input against the creation rules and returns a
// ValidationError with field-level detail on failure.
func (in *QuotationInput) Validate() error {
	ve := &apperrors.ValidationError{}
	if strings.TrimSpace(in.Product) == "" {
		ve.Add("product", "product is required")
	} else if len(in.Product) > maxProductLength {
		ve.Add("product", "product must be at most 500 characters")
	}
	if in.Quantity < 1 {
		ve.Add("quantity", "quantity must be a positive integer")
	}
	if in.UnitPrice <= 0 {
		ve.Add("unit_price", "unit price must be greater than zero")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Round2 rounds a monetary value to two fractional digits.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TotalPrice computes the stored total for the input, rounded to 2 decimals.
func (in *QuotationInput) TotalPrice() float64 {
	return Round2(float64(in.Quantity) * in.UnitPrice)
}
