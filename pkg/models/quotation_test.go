package models

import (
	"strings"
	"testing"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
)

func TestQuotationInputValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     QuotationInput
		wantField string
	}{
		{"valid", QuotationInput{Product: "Papel A4", Quantity: 10, UnitPrice: 12.50}, ""},
		{"empty product", QuotationInput{Product: "  ", Quantity: 10, UnitPrice: 1}, "product"},
		{"product too long", QuotationInput{Product: strings.Repeat("x", 501), Quantity: 1, UnitPrice: 1}, "product"},
		{"zero quantity", QuotationInput{Product: "Papel", Quantity: 0, UnitPrice: 1}, "quantity"},
		{"negative quantity", QuotationInput{Product: "Papel", Quantity: -3, UnitPrice: 1}, "quantity"},
		{"zero unit price", QuotationInput{Product: "Papel", Quantity: 1, UnitPrice: 0}, "unit_price"},
		{"negative unit price", QuotationInput{Product: "Papel", Quantity: 1, UnitPrice: -5}, "unit_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid input, got %v", err)
				}
				return
			}
			ve, ok := apperrors.AsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, f := range ve.Fields {
				if f.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected error on field %q, got %v", tt.wantField, ve.Fields)
			}
		})
	}
}

func TestTotalPriceRounding(t *testing.T) {
	tests := []struct {
		quantity  int
		unitPrice float64
		want      float64
	}{
		{1000, 12.50, 12500.00},
		{3, 0.10, 0.30},
		{7, 1.333, 9.33},
		{2, 2.675, 5.35},
	}

	for _, tt := range tests {
		in := QuotationInput{Product: "p", Quantity: tt.quantity, UnitPrice: tt.unitPrice}
		if got := in.TotalPrice(); got != tt.want {
			t.Errorf("TotalPrice(%d x %v) = %v, want %v", tt.quantity, tt.unitPrice, got, tt.want)
		}
	}
}

func TestIsValidQuotationStatus(t *testing.T) {
	for _, s := range ValidQuotationStatuses {
		if !IsValidQuotationStatus(s) {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []string{"", "cancelled", "pendente", "PENDING"} {
		if IsValidQuotationStatus(s) {
			t.Errorf("status %q should be invalid", s)
		}
	}
}
