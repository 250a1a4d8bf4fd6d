package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cotafacil/cota-engine/pkg/database"
	"github.com/cotafacil/cota-engine/pkg/models"
)

// AccessLogRepository defines the interface for access log data access.
// Logs are append-only: there is no update or delete.
type AccessLogRepository interface {
	Create(ctx context.Context, entry *models.AccessLog) error
	List(ctx context.Context, municipalityID *uuid.UUID, limit int) ([]*models.AccessLog, error)
}

type accessLogRepository struct {
	db *database.DB
}

// NewAccessLogRepository creates a new access log repository.
func NewAccessLogRepository(db *database.DB) AccessLogRepository {
	return &accessLogRepository{db: db}
}

func (r *accessLogRepository) Create(ctx context.Context, entry *models.AccessLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	query := `
		INSERT INTO access_logs (id, user_id, municipality_id, endpoint, method, ip, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.MunicipalityID,
		entry.Endpoint,
		entry.Method,
		entry.IP,
		entry.Status,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create access log: %w", err)
	}
	return nil
}

func (r *accessLogRepository) List(ctx context.Context, municipalityID *uuid.UUID, limit int) ([]*models.AccessLog, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, user_id, municipality_id, endpoint, method, ip, status, timestamp FROM access_logs`
	args := []any{}
	if municipalityID != nil {
		query += ` WHERE municipality_id = $1`
		args = append(args, *municipalityID)
	}
	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list access logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AccessLog
	for rows.Next() {
		var l models.AccessLog
		err := rows.Scan(&l.ID, &l.UserID, &l.MunicipalityID, &l.Endpoint, &l.Method, &l.IP, &l.Status, &l.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access logs: %w", err)
	}
	return logs, nil
}

var _ AccessLogRepository = (*accessLogRepository)(nil)
