package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/llm"
)

func failingClient() *llm.MockClient {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "", errors.New("provider unavailable")
	}
	return mock
}

func TestGenerate_UsesModelResponse(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		assert.InDelta(t, 0.2, temperature, 0.001)
		assert.Contains(t, prompt, "Papel A4")
		assert.Contains(t, prompt, "Prefeitura de Teste")
		return "RELATÓRIO EXECUTIVO\n...", nil
	}

	g := NewReportGenerator(mock, 5*time.Second, zap.NewNop())
	analysis := fallbackAnalysis(12.50)

	report := g.Generate(context.Background(), "Papel A4", 100, 12.50, analysis, "Prefeitura de Teste")
	assert.Equal(t, "RELATÓRIO EXECUTIVO\n...", report)
}

func TestGenerate_FallbackBuckets(t *testing.T) {
	g := NewReportGenerator(failingClient(), 5*time.Second, zap.NewNop())

	tests := []struct {
		name      string
		unitPrice float64
		avgPrice  float64
		want      string
	}{
		{"above average", 11.50, 10.00, "ACIMA DA MÉDIA"},   // +15%
		{"below average", 8.50, 10.00, "ABAIXO DA MÉDIA"},   // -15%
		{"within average", 10.50, 10.00, "DENTRO DA MÉDIA"}, // +5%
		{"exactly +10%", 11.00, 10.00, "DENTRO DA MÉDIA"},   // boundary stays inside
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := &PriceAnalysis{
				AveragePrice:    tt.avgPrice,
				PriceRangeMin:   tt.avgPrice * 0.8,
				PriceRangeMax:   tt.avgPrice * 1.2,
				MarketAnalysis:  "análise",
				Recommendations: []string{"uma recomendação"},
				Confidence:      0.5,
			}

			report := g.Generate(context.Background(), "Produto", 10, tt.unitPrice, analysis, "Cidade")
			assert.Contains(t, report, "Situação: "+tt.want)
			assert.Contains(t, report, "RELATÓRIO DE COTAÇÃO")
			assert.Contains(t, report, "- uma recomendação")
		})
	}
}

func TestGenerate_FallbackOnEmptyResponse(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "   ", nil
	}

	g := NewReportGenerator(mock, 5*time.Second, zap.NewNop())
	report := g.Generate(context.Background(), "Produto", 1, 10.00, fallbackAnalysis(10.00), "Cidade")
	assert.Contains(t, report, "RELATÓRIO DE COTAÇÃO")
}
