package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/llm"
)

// ReportGenerator renders the executive quotation report stored alongside
// the quotation. Like the analyzer, it never fails: a deterministic template
// stands in when the model cannot produce a report.
type ReportGenerator interface {
	Generate(ctx context.Context, product string, quantity int, unitPrice float64, analysis *PriceAnalysis, municipalityName string) string
}

type reportGenerator struct {
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewReportGenerator creates a report generator backed by the given LLM client.
func NewReportGenerator(client llm.Client, timeout time.Duration, logger *zap.Logger) ReportGenerator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &reportGenerator{
		client:  client,
		timeout: timeout,
		logger:  logger.Named("report"),
	}
}

const reportSystemMessage = "Você é um especialista em elaboração de relatórios para compras públicas. " +
	"Gere relatórios técnicos, detalhados e adequados para processos licitatórios."

func (g *reportGenerator) Generate(ctx context.Context, product string, quantity int, unitPrice float64, analysis *PriceAnalysis, municipalityName string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	totalValue := float64(quantity) * unitPrice
	averageTotal := float64(quantity) * analysis.AveragePrice
	difference := totalValue - averageTotal
	percentDiff := 0.0
	if averageTotal != 0 {
		percentDiff = difference / averageTotal * 100
	}

	prompt := fmt.Sprintf(`Gere um relatório completo de cotação para compra pública com os seguintes dados:

DADOS DA COTAÇÃO:
- Produto: %s
- Quantidade: %d unidades
- Preço unitário: R$ %.2f
- Valor total: R$ %.2f
- Município: %s

ANÁLISE DE PREÇOS:
- Preço médio de mercado: R$ %.2f
- Valor total médio: R$ %.2f
- Diferença: R$ %.2f (%.1f%%)
- Faixa de preços: R$ %.2f - R$ %.2f
- Confiança da análise: %.0f%%

ANÁLISE DE MERCADO:
%s

RECOMENDAÇÕES:
%s

Gere um relatório executivo estruturado e profissional adequado para documentação de processo licitatório.`,
		product, quantity, unitPrice, totalValue, municipalityName,
		analysis.AveragePrice, averageTotal, difference, percentDiff,
		analysis.PriceRangeMin, analysis.PriceRangeMax,
		analysis.Confidence*100,
		analysis.MarketAnalysis,
		bulletList(analysis.Recommendations),
	)

	report, err := g.client.GenerateResponse(ctx, prompt, reportSystemMessage, 0.2)
	if err != nil || strings.TrimSpace(report) == "" {
		g.logger.Warn("report generation failed, using template",
			zap.String("product", product),
			zap.Error(err))
		return fallbackReport(product, quantity, unitPrice, analysis, municipalityName)
	}
	return report
}

// fallbackReport classifies the quoted total against the market average:
// more than 10% over is ACIMA DA MÉDIA, more than 10% under is ABAIXO DA
// MÉDIA, everything else DENTRO DA MÉDIA.
func fallbackReport(product string, quantity int, unitPrice float64, analysis *PriceAnalysis, municipalityName string) string {
	totalValue := float64(quantity) * unitPrice
	averageTotal := float64(quantity) * analysis.AveragePrice
	difference := totalValue - averageTotal
	percentDiff := 0.0
	if averageTotal != 0 {
		percentDiff = difference / averageTotal * 100
	}

	situation := "DENTRO DA MÉDIA"
	switch {
	case percentDiff > 10:
		situation = "ACIMA DA MÉDIA"
	case percentDiff < -10:
		situation = "ABAIXO DA MÉDIA"
	}

	return fmt.Sprintf(`RELATÓRIO DE COTAÇÃO

DADOS BÁSICOS:
- Produto: %s
- Quantidade: %d unidades
- Preço unitário: R$ %.2f
- Valor total: R$ %.2f
- Município: %s

ANÁLISE DE PREÇOS:
- Preço médio de mercado: R$ %.2f
- Diferença em relação à média: R$ %.2f (%.1f%%)
- Situação: %s

RECOMENDAÇÕES:
%s

OBSERVAÇÕES:
%s`,
		product, quantity, unitPrice, totalValue, municipalityName,
		analysis.AveragePrice, difference, percentDiff, situation,
		bulletList(analysis.Recommendations),
		analysis.MarketAnalysis,
	)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

var _ ReportGenerator = (*reportGenerator)(nil)
