package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	"github.com/smart-chama/chama_backend/internal/models"
	"github.com/smart-chama/chama_backend/internal/utils/mapping"
	"github.com/smart-chama/chama_backend/internal/utils/pagination"
)

const notificationColumns = `notification_id, recipient_id, sender_id, type, title, message, priority,
	read, read_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxNotificationRepository struct {
	BaseRepository
}

func newPgxNotificationRepository(pool *pgxpool.Pool) portsrepo.NotificationRepositoryFacade {
	return &PgxNotificationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxNotificationRepository implements portsrepo.NotificationRepositoryFacade
var _ portsrepo.NotificationRepositoryFacade = (*PgxNotificationRepository)(nil)

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.NotificationID,
		&n.RecipientID,
		&n.SenderID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Priority,
		&n.Read,
		&n.ReadAt,
		&n.CreatedAt,
		&n.CreatedBy,
		&n.LastUpdatedAt,
		&n.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const insertNotificationQuery = `
	INSERT INTO notifications (` + notificationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

func notificationInsertArgs(n models.Notification) []interface{} {
	return []interface{}{
		n.NotificationID, n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, n.Priority,
		n.Read, n.ReadAt, n.CreatedAt, n.CreatedBy, n.LastUpdatedAt, n.LastUpdatedBy,
	}
}

func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, notification domain.Notification) error {
	n := mapping.ToModelNotification(notification)
	_, err := r.Pool.Exec(ctx, insertNotificationQuery, notificationInsertArgs(n)...)
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", n.NotificationID, err)
	}
	return nil
}

// SaveNotifications persists a batch of notifications in one round trip.
func (r *PgxNotificationRepository) SaveNotifications(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, notification := range notifications {
		n := mapping.ToModelNotification(notification)
		batch.Queue(insertNotificationQuery, notificationInsertArgs(n)...)
	}
	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert notification batch: %w", err)
	}
	return nil
}

func (r *PgxNotificationRepository) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE notification_id = $1;`
	n, err := scanNotification(r.Pool.QueryRow(ctx, query, notificationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification %s: %w", notificationID, err)
	}
	notification := mapping.ToDomainNotification(*n)
	return &notification, nil
}

// ListNotificationsByUser retrieves a user's notifications, newest first, using
// token-based pagination.
func (r *PgxNotificationRepository) ListNotificationsByUser(ctx context.Context, userID string, limit int, nextToken *string, unreadOnly bool) ([]domain.Notification, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	args := []interface{}{userID}

	if unreadOnly {
		baseQuery += " AND read = FALSE"
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, decodeErr := pagination.DecodeDateBasedToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt)
		baseQuery += " AND created_at < $" + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating notification rows: %w", rows.Err())
	}

	var nextTokenVal *string
	if len(notifications) > limit {
		last := notifications[limit-1]
		token := pagination.EncodeDateBasedToken(last.CreatedAt)
		nextTokenVal = &token
		notifications = notifications[:limit]
	}
	return mapping.ToDomainNotificationSlice(notifications), nextTokenVal, nil
}

func (r *PgxNotificationRepository) CountUnreadByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE;`
	var count int64
	if err := r.Pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}

// MarkRead flips a single notification to read. The recipient check keeps
// users from acknowledging each other's notifications.
func (r *PgxNotificationRepository) MarkRead(ctx context.Context, notificationID string, userID string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET read = TRUE, read_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE notification_id = $3 AND recipient_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, readAt, userID, notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found for recipient: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxNotificationRepository) MarkAllRead(ctx context.Context, userID string, readAt time.Time) error {
	query := `
		UPDATE notifications
		SET read = TRUE, read_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE recipient_id = $2 AND read = FALSE;
	`
	if _, err := r.Pool.Exec(ctx, query, readAt, userID); err != nil {
		return fmt.Errorf("failed to mark notifications as read for user %s: %w", userID, err)
	}
	return nil
}
