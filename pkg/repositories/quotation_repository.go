package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cotafacil/cota-engine/pkg/apperrors"
	"github.com/cotafacil/cota-engine/pkg/database"
	"github.com/cotafacil/cota-engine/pkg/models"
)

// QuotationRepository defines the interface for quotation data access.
type QuotationRepository interface {
	// Create persists the quotation with all enrichment fields in a single
	// insert, so a stored row is never observed half-enriched.
	Create(ctx context.Context, q *models.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	// List returns all quotations, or only one municipality's quotations
	// when municipalityID is non-nil. Newest first.
	List(ctx context.Context, municipalityID *uuid.UUID) ([]*models.Quotation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkWebhookSent(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type quotationRepository struct {
	db *database.DB
}

// NewQuotationRepository creates a new quotation repository.
func NewQuotationRepository(db *database.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

const quotationColumns = `id, municipality_id, user_id, product, quantity, unit_price, total_price,
	status, average_market_price, price_range_min, price_range_max, market_analysis,
	recommendations, analysis_confidence, price_report, webhook_sent, created_at`

func scanQuotation(row pgx.Row) (*models.Quotation, error) {
	var q models.Quotation
	err := row.Scan(
		&q.ID,
		&q.MunicipalityID,
		&q.UserID,
		&q.Product,
		&q.Quantity,
		&q.UnitPrice,
		&q.TotalPrice,
		&q.Status,
		&q.AverageMarketPrice,
		&q.PriceRangeMin,
		&q.PriceRangeMax,
		&q.MarketAnalysis,
		&q.Recommendations,
		&q.AnalysisConfidence,
		&q.PriceReport,
		&q.WebhookSent,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quotationRepository) Create(ctx context.Context, q *models.Quotation) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	if q.Recommendations == nil {
		q.Recommendations = []string{}
	}

	query := `
		INSERT INTO quotations (
			id, municipality_id, user_id, product, quantity, unit_price, total_price,
			status, average_market_price, price_range_min, price_range_max,
			market_analysis, recommendations, analysis_confidence, price_report,
			webhook_sent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.Exec(ctx, query,
		q.ID,
		q.MunicipalityID,
		q.UserID,
		q.Product,
		q.Quantity,
		q.UnitPrice,
		q.TotalPrice,
		q.Status,
		q.AverageMarketPrice,
		q.PriceRangeMin,
		q.PriceRangeMax,
		q.MarketAnalysis,
		q.Recommendations,
		q.AnalysisConfidence,
		q.PriceReport,
		q.WebhookSent,
		q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quotation: %w", err)
	}
	return nil
}

func (r *quotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE id = $1`

	q, err := scanQuotation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return q, nil
}

func (r *quotationRepository) List(ctx context.Context, municipalityID *uuid.UUID) ([]*models.Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations`
	args := []any{}
	if municipalityID != nil {
		query += ` WHERE municipality_id = $1`
		args = append(args, *municipalityID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer rows.Close()

	var quotations []*models.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		quotations = append(quotations, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotations: %w", err)
	}
	return quotations, nil
}

func (r *quotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.Exec(ctx, `UPDATE quotations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update quotation status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *quotationRepository) MarkWebhookSent(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE quotations SET webhook_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *quotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ QuotationRepository = (*quotationRepository)(nil)
