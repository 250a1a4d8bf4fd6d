// Package repositories implements PostgreSQL data access for cota-engine.
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

// MunicipalityRepository defines the interface for municipality data access.
type MunicipalityRepository interface {
	Create(ctx context.Context, m *models.Municipality) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Municipality, error)
	List(ctx context.Context) ([]*models.Municipality, error)
	Update(ctx context.Context, m *models.Municipality) error
	// Delete removes the municipality; users, quotations, access logs and
	// notifications cascade at the storage layer.
	Delete(ctx context.Context, id uuid.UUID) error
}

type municipalityRepository struct {
	db *database.DB
}

// NewMunicipalityRepository creates a new municipality repository.
func NewMunicipalityRepository(db *database.DB) MunicipalityRepository {
	return &municipalityRepository{db: db}
}

func (r *municipalityRepository) Create(ctx context.Context, m *models.Municipality) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()

	query := `
		INSERT INTO municipalities (id, name, cnpj, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, m.ID, m.Name, m.CNPJ, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create municipality: %w", err)
	}
	return nil
}

func (r *municipalityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Municipality, error) {
	query := `SELECT id, name, cnpj, created_at FROM municipalities WHERE id = $1`

	var m models.Municipality
	err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.CNPJ, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get municipality: %w", err)
	}
	return &m, nil
}

func (r *municipalityRepository) List(ctx context.Context) ([]*models.Municipality, error) {
	query := `SELECT id, name, cnpj, created_at FROM municipalities ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list municipalities: %w", err)
	}
	defer rows.Close()

	var out []*models.Municipality
	for rows.Next() {
		var m models.Municipality
		if err := rows.Scan(&m.ID, &m.Name, &m.CNPJ, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan municipality: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating municipalities: %w", err)
	}
	return out, nil
}

func (r *municipalityRepository) Update(ctx context.Context, m *models.Municipality) error {
	query := `UPDATE municipalities SET name = $1, cnpj = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, m.Name, m.CNPJ, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update municipality: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *municipalityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM municipalities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete municipality: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ MunicipalityRepository = (*municipalityRepository)(nil)
