package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/order-notifier/internal/model"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateActive      = errors.New("active notification with the same dedup key exists")
	ErrTransitionConflict   = errors.New("notification is not in the expected status")

	// ErrClaimExpired is recorded as last error of a claim released by ReleaseStale.
	ErrClaimExpired = errors.New("delivery claim expired")
)

const columns = `id, channel, type, recipient, user_id, payload, template, dedup_key,
		       status, attempts, provider_id, sent_at, last_error, created_at, updated_at`

// Repository provides methods to interact with notifications table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (model.Notification, error) {
	var (
		n       model.Notification
		payload []byte
		sentAt  sql.NullTime
	)
	var userID, template, providerID, lastErr sql.NullString

	err := row.Scan(
		&n.ID, &n.Channel, &n.Type, &n.Recipient, &userID, &payload, &template, &n.DedupKey,
		&n.Status, &n.Attempts, &providerID, &sentAt, &lastErr, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return model.Notification{}, err
	}

	n.UserID = userID.String
	n.Template = template.String
	n.ProviderID = providerID.String
	n.LastError = lastErr.String
	n.Payload = payload
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}

	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func payloadArg(p []byte) string {
	if len(p) == 0 {
		return "{}"
	}

	return string(p)
}

// Create inserts a new PENDING notification.
//
// It returns ErrDuplicateActive when an active notification with the same
// dedup key already exists; the partial unique index on dedup_key makes the
// check and the insert a single atomic step.
func (r *Repository) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	query := `
		INSERT INTO notifications (
		    channel, type, recipient, user_id, payload, template, dedup_key, status, attempts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING', 0)
		ON CONFLICT (dedup_key) WHERE status IN ('PENDING', 'IN_PROGRESS') DO NOTHING
		RETURNING ` + columns + `;
    `

	created, err := scanNotification(r.db.Master.QueryRowContext(
		ctx, query,
		n.Channel, n.Type, n.Recipient, nullString(n.UserID), payloadArg(n.Payload), nullString(n.Template), n.DedupKey,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrDuplicateActive
		}

		return model.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}

	return created, nil
}

// GetByID retrieves a notification by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	query := `
		SELECT ` + columns + `
		FROM notifications
		WHERE id = $1;
    `

	n, err := scanNotification(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// FindActiveDuplicate returns the PENDING or IN_PROGRESS notification with the given dedup key.
func (r *Repository) FindActiveDuplicate(ctx context.Context, dedupKey string) (model.Notification, error) {
	query := `
		SELECT ` + columns + `
		FROM notifications
		WHERE dedup_key = $1 AND status IN ('PENDING', 'IN_PROGRESS')
		LIMIT 1;
    `

	n, err := scanNotification(r.db.Master.QueryRowContext(ctx, query, dedupKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to find active duplicate: %w", err)
	}

	return n, nil
}

// ListPending returns up to limit PENDING notifications, oldest first.
func (r *Repository) ListPending(ctx context.Context, limit int) ([]model.Notification, error) {
	query := `
		SELECT ` + columns + `
		FROM notifications
		WHERE status = 'PENDING'
		ORDER BY created_at ASC, id ASC
		LIMIT $1;
    `

	return r.list(ctx, query, limit)
}

// ListAll retrieves all notifications ordered by creation time descending.
func (r *Repository) ListAll(ctx context.Context) ([]model.Notification, error) {
	query := `
		SELECT ` + columns + `
		FROM notifications
		ORDER BY created_at DESC;
    `

	return r.list(ctx, query)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// Claim moves a PENDING notification to IN_PROGRESS and increments its attempts.
//
// Only one concurrent caller can win the claim. The others get
// ErrTransitionConflict together with the current state of the record.
func (r *Repository) Claim(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	query := `
		UPDATE notifications
		SET status = 'IN_PROGRESS', attempts = attempts + 1, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + columns + `;
    `

	return r.transition(ctx, id, query, id)
}

// MarkSucceeded records a successful delivery of an IN_PROGRESS notification.
func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID, providerID string, sentAt time.Time) (model.Notification, error) {
	query := `
		UPDATE notifications
		SET status = 'SUCCESS', provider_id = $2, sent_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'IN_PROGRESS'
		RETURNING ` + columns + `;
    `

	return r.transition(ctx, id, query, id, providerID, sentAt)
}

// MarkFailed records a failed delivery attempt of an IN_PROGRESS notification.
//
// The record goes back to PENDING, or to FAILED once attempts reached maxAttempts.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, maxAttempts int) (model.Notification, error) {
	query := `
		UPDATE notifications
		SET status = CASE WHEN attempts >= $3 THEN 'FAILED' ELSE 'PENDING' END,
		    last_error = $2, updated_at = now()
		WHERE id = $1 AND status = 'IN_PROGRESS'
		RETURNING ` + columns + `;
    `

	return r.transition(ctx, id, query, id, model.TruncateError(lastError), maxAttempts)
}

func (r *Repository) transition(ctx context.Context, id uuid.UUID, query string, args ...any) (model.Notification, error) {
	n, err := scanNotification(r.db.Master.QueryRowContext(ctx, query, args...))
	if err == nil {
		return n, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, fmt.Errorf("failed to update notification: %w", err)
	}

	current, err := scanNotification(r.db.Master.QueryRowContext(ctx, `
		SELECT `+columns+`
		FROM notifications
		WHERE id = $1;
    `, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return current, ErrTransitionConflict
}

// ReleaseStale returns IN_PROGRESS notifications not touched since olderThan to PENDING,
// or to FAILED when their retry budget is spent. It returns the number of released records.
func (r *Repository) ReleaseStale(ctx context.Context, olderThan time.Time, maxAttempts int) (int64, error) {
	query := `
		UPDATE notifications
		SET status = CASE WHEN attempts >= $2 THEN 'FAILED' ELSE 'PENDING' END,
		    last_error = $3, updated_at = now()
		WHERE status = 'IN_PROGRESS' AND updated_at < $1;
    `

	res, err := r.db.ExecContext(ctx, query, olderThan, maxAttempts, ErrClaimExpired.Error())
	if err != nil {
		return 0, fmt.Errorf("failed to release stale notifications: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}
