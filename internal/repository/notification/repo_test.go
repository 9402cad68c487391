package notification

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/order-notifier/internal/model"
)

var rowColumns = []string{
	"id", "channel", "type", "recipient", "user_id", "payload", "template", "dedup_key",
	"status", "attempts", "provider_id", "sent_at", "last_error", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func addRow(rows *sqlmock.Rows, n model.Notification) *sqlmock.Rows {
	var sentAt any
	if n.SentAt != nil {
		sentAt = *n.SentAt
	}

	nullable := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}

	return rows.AddRow(
		n.ID.String(), string(n.Channel), n.Type, n.Recipient, nullable(n.UserID), []byte(n.Payload),
		nullable(n.Template), n.DedupKey, string(n.Status), n.Attempts, nullable(n.ProviderID), sentAt,
		nullable(n.LastError), n.CreatedAt, n.UpdatedAt,
	)
}

func sampleNotification(status model.Status, attempts int) model.Notification {
	now := time.Now().UTC().Truncate(time.Second)
	return model.Notification{
		ID:        uuid.New(),
		Channel:   model.ChannelEmail,
		Type:      "ORDER_PLACED",
		Recipient: "a@x.com",
		UserID:    "u1",
		Payload:   []byte(`{"orderId":"o1","total":10}`),
		Template:  "ORDER_CONFIRMATION",
		DedupKey:  "key-1",
		Status:    status,
		Attempts:  attempts,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreate(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusPending, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO notifications`)).
		WithArgs(n.Channel, n.Type, n.Recipient, n.UserID, string(n.Payload), n.Template, n.DedupKey).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	created, err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, n.ID, created.ID)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, "u1", created.UserID)
	assert.JSONEq(t, string(n.Payload), string(created.Payload))
	assert.Nil(t, created.SentAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateActive(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusPending, 0)
	n.UserID = ""
	n.Payload = nil

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (dedup_key) WHERE status IN ('PENDING', 'IN_PROGRESS') DO NOTHING`)).
		WithArgs(n.Channel, n.Type, n.Recipient, nil, "{}", n.Template, n.DedupKey).
		WillReturnRows(sqlmock.NewRows(rowColumns))

	_, err := repo.Create(context.Background(), n)
	assert.ErrorIs(t, err, ErrDuplicateActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusSuccess, 1)
	sentAt := n.CreatedAt.Add(time.Second)
	n.SentAt = &sentAt
	n.ProviderID = "msg-1"

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(n.ID).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	got, err := repo.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", got.ProviderID)
	require.NotNil(t, got.SentAt)
	assert.True(t, sentAt.Equal(*got.SentAt))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(n.ID).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), n.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveDuplicate(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusInProgress, 1)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE dedup_key = $1 AND status IN ('PENDING', 'IN_PROGRESS')`)).
		WithArgs(n.DedupKey).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	got, err := repo.FindActiveDuplicate(context.Background(), n.DedupKey)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE dedup_key = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(rowColumns))

	_, err = repo.FindActiveDuplicate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending(t *testing.T) {
	repo, mock := setupMockDB(t)

	n1 := sampleNotification(model.StatusPending, 0)
	n2 := sampleNotification(model.StatusPending, 2)
	n2.CreatedAt = n1.CreatedAt.Add(time.Minute)

	rows := sqlmock.NewRows(rowColumns)
	addRow(rows, n1)
	addRow(rows, n2)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at ASC, id ASC`)).
		WithArgs(10).
		WillReturnRows(rows)

	list, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, n1.ID, list[0].ID)
	assert.Equal(t, 2, list[1].Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll_Empty(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows(rowColumns))

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusInProgress, 1)

	mock.ExpectQuery(regexp.QuoteMeta(`SET status = 'IN_PROGRESS', attempts = attempts + 1`)).
		WithArgs(n.ID).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	claimed, err := repo.Claim(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, claimed.Status)
	assert.Equal(t, 1, claimed.Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_Conflict(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusSuccess, 1)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND status = 'PENDING'`)).
		WithArgs(n.ID).
		WillReturnRows(sqlmock.NewRows(rowColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1;`)).
		WithArgs(n.ID).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	current, err := repo.Claim(context.Background(), n.ID)
	assert.ErrorIs(t, err, ErrTransitionConflict)
	assert.Equal(t, model.StatusSuccess, current.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaim_NotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND status = 'PENDING'`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(rowColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1;`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(rowColumns))

	_, err := repo.Claim(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSucceeded(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusSuccess, 1)
	sentAt := time.Now().UTC()
	n.SentAt = &sentAt
	n.ProviderID = "msg-42"

	mock.ExpectQuery(regexp.QuoteMeta(`SET status = 'SUCCESS', provider_id = $2, sent_at = $3`)).
		WithArgs(n.ID, "msg-42", sentAt).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	got, err := repo.MarkSucceeded(context.Background(), n.ID, "msg-42", sentAt)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, got.Status)
	assert.Equal(t, "msg-42", got.ProviderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed_TruncatesError(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification(model.StatusPending, 1)
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'e'
	}
	n.LastError = string(long[:model.MaxLastErrorLen])

	mock.ExpectQuery(regexp.QuoteMeta(`CASE WHEN attempts >= $3 THEN 'FAILED' ELSE 'PENDING' END`)).
		WithArgs(n.ID, string(long[:model.MaxLastErrorLen]), 5).
		WillReturnRows(addRow(sqlmock.NewRows(rowColumns), n))

	got, err := repo.MarkFailed(context.Background(), n.ID, string(long), 5)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Len(t, got.LastError, model.MaxLastErrorLen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseStale(t *testing.T) {
	repo, mock := setupMockDB(t)

	olderThan := time.Now().Add(-5 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta(`last_error = $3, updated_at = now()`)).
		WithArgs(olderThan, 5, ErrClaimExpired.Error()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	released, err := repo.ReleaseStale(context.Background(), olderThan, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), released)
	assert.NoError(t, mock.ExpectationsWereMet())
}
