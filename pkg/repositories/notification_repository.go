package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cotafacil/cota-engine/pkg/database"
	"github.com/cotafacil/cota-engine/pkg/models"
)

// NotificationRepository defines the interface for notification data access.
// One row per dispatch attempt; rows are never updated.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, municipalityID *uuid.UUID, limit int) ([]*models.Notification, error)
}

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *database.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	query := `
		INSERT INTO notifications (id, quotation_id, municipality_id, type, recipient, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		n.ID,
		n.QuotationID,
		n.MunicipalityID,
		n.Type,
		n.Recipient,
		n.Status,
		n.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, municipalityID *uuid.UUID, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, quotation_id, municipality_id, type, recipient, status, timestamp FROM notifications`
	args := []any{}
	if municipalityID != nil {
		query += ` WHERE municipality_id = $1`
		args = append(args, *municipalityID)
	}
	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.QuotationID, &n.MunicipalityID, &n.Type, &n.Recipient, &n.Status, &n.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

var _ NotificationRepository = (*notificationRepository)(nil)
