// Package services contains the business logic of cota-engine.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/llm"
	"github.com/cotafacil/cota-engine/pkg/models"
)

// PriceAnalysis is the market-price assessment produced for a quotation at
// creation time.
type PriceAnalysis struct {
	AveragePrice    float64
	PriceRangeMin   float64
	PriceRangeMax   float64
	MarketAnalysis  string
	Recommendations []string
	Confidence      float64
	Sources         []string
}

// PriceAnalyzer produces a market-price analysis for a product. Analyze
// never fails: when the model is unreachable or returns garbage, a
// formula-based estimate is returned instead so quotation creation is never
// blocked on the AI provider.
type PriceAnalyzer interface {
	Analyze(ctx context.Context, product string, quantity int, unitPrice float64) *PriceAnalysis
}

type priceAnalyzer struct {
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewPriceAnalyzer creates a price analyzer backed by the given LLM client.
func NewPriceAnalyzer(client llm.Client, timeout time.Duration, logger *zap.Logger) PriceAnalyzer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &priceAnalyzer{
		client:  client,
		timeout: timeout,
		logger:  logger.Named("price-analysis"),
	}
}

const analysisSystemMessage = "Você é um especialista em análise de preços para compras públicas no Brasil. " +
	"Forneça análises precisas e baseadas em dados de mercado reais."

// analysisResponse mirrors the JSON structure requested in the prompt.
type analysisResponse struct {
	AveragePrice float64 `json:"averagePrice"`
	PriceRange   struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"priceRange"`
	MarketAnalysis  string   `json:"marketAnalysis"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	Sources         []string `json:"sources"`
}

func (a *priceAnalyzer) Analyze(ctx context.Context, product string, quantity int, unitPrice float64) *PriceAnalysis {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildAnalysisPrompt(product, quantity, unitPrice)

	raw, err := a.client.GenerateResponse(ctx, prompt, analysisSystemMessage, 0.3)
	if err != nil {
		a.logger.Warn("price analysis failed, using fallback estimate",
			zap.String("product", product),
			zap.Error(err))
		return fallbackAnalysis(unitPrice)
	}

	parsed, err := llm.ParseJSONResponse[analysisResponse](raw)
	if err != nil {
		a.logger.Warn("price analysis returned unparseable response, using fallback estimate",
			zap.String("product", product),
			zap.Error(err))
		return fallbackAnalysis(unitPrice)
	}

	// Each field falls back independently so one missing value does not
	// discard the rest of the analysis.
	result := &PriceAnalysis{
		AveragePrice:    parsed.AveragePrice,
		PriceRangeMin:   parsed.PriceRange.Min,
		PriceRangeMax:   parsed.PriceRange.Max,
		MarketAnalysis:  parsed.MarketAnalysis,
		Recommendations: parsed.Recommendations,
		Confidence:      parsed.Confidence,
		Sources:         parsed.Sources,
	}
	if result.AveragePrice == 0 {
		result.AveragePrice = unitPrice
	}
	if result.PriceRangeMin == 0 {
		result.PriceRangeMin = unitPrice * 0.8
	}
	if result.PriceRangeMax == 0 {
		result.PriceRangeMax = unitPrice * 1.2
	}
	if result.MarketAnalysis == "" {
		result.MarketAnalysis = "Análise não disponível"
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	if result.Confidence == 0 {
		result.Confidence = 0.5
	}
	if len(result.Sources) == 0 {
		result.Sources = []string{"Análise baseada em dados de mercado"}
	}

	a.logger.Info("price analysis completed",
		zap.String("product", product),
		zap.Float64("average_price", result.AveragePrice),
		zap.Float64("confidence", result.Confidence))

	return result
}

func buildAnalysisPrompt(product string, quantity int, unitPrice float64) string {
	return fmt.Sprintf(`Analise o preço do seguinte produto para compra pública no Brasil:

Produto: %s
Quantidade: %d unidades
Preço unitário informado: R$ %.2f
Valor total: R$ %.2f

Por favor, forneça uma análise detalhada incluindo:
1. Preço médio de mercado para este produto
2. Faixa de preços (mínimo e máximo) típica
3. Análise se o preço está adequado, alto ou baixo
4. Recomendações para otimização
5. Fontes ou referências de mercado

Responda em formato JSON seguindo esta estrutura:
{
  "averagePrice": número do preço médio unitário,
  "priceRange": {
    "min": preço mínimo unitário,
    "max": preço máximo unitário
  },
  "marketAnalysis": "análise detalhada do mercado e posicionamento do preço",
  "recommendations": ["lista", "de", "recomendações"],
  "confidence": número de 0 a 1 indicando confiança na análise,
  "sources": ["fontes", "de", "referência"]
}`, product, quantity, unitPrice, float64(quantity)*unitPrice)
}

// fallbackAnalysis is the formula-based estimate used when the model cannot
// answer. Confidence 0.3 marks it as low-trust for downstream consumers.
func fallbackAnalysis(unitPrice float64) *PriceAnalysis {
	return &PriceAnalysis{
		AveragePrice:  models.Round2(unitPrice),
		PriceRangeMin: models.Round2(unitPrice * 0.8),
		PriceRangeMax: models.Round2(unitPrice * 1.2),
		MarketAnalysis: "Não foi possível realizar análise de mercado no momento. " +
			"Verifique se o preço está adequado comparando com fornecedores similares.",
		Recommendations: []string{
			"Consulte múltiplos fornecedores",
			"Verifique preços em portais de transparência",
			"Compare com licitações similares",
		},
		Confidence: 0.3,
		Sources:    []string{"Estimativa baseada em fórmula padrão"},
	}
}

var _ PriceAnalyzer = (*priceAnalyzer)(nil)
