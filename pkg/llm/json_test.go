package llm

import (
	"testing"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	got, err := ExtractJSON(`{"averagePrice": 10.5}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"averagePrice": 10.5}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSON_MarkdownFence(t *testing.T) {
	response := "Here is the analysis:\n```json\n{\"confidence\": 0.8}\n```\nDone."
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"confidence": 0.8}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSON_ThinkTags(t *testing.T) {
	response := "<think>pondering prices</think>\n{\"min\": 1}"
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"min": 1}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	response := `prefix {"priceRange": {"min": 8, "max": 12}, "note": "a}b"} suffix`
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"priceRange": {"min": 8, "max": 12}, "note": "a}b"}` {
		t.Errorf("unexpected result: %s", got)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	if _, err := ExtractJSON("no structured content here"); err == nil {
		t.Fatal("expected error for response without JSON")
	}
}

func TestParseJSONResponse(t *testing.T) {
	type analysis struct {
		AveragePrice float64 `json:"averagePrice"`
		Confidence   float64 `json:"confidence"`
	}

	got, err := ParseJSONResponse[analysis]("```json\n{\"averagePrice\": 12.5, \"confidence\": 0.9}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AveragePrice != 12.5 || got.Confidence != 0.9 {
		t.Errorf("unexpected parse result: %+v", got)
	}
}
