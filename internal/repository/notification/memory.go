package notification

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/order-notifier/internal/model"
)

// MemoryRepository keeps notifications in process memory.
//
// It honours the same contract as Repository, including the uniqueness of the
// dedup key among active notifications, and is meant for local runs and tests.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Notification
	order []uuid.UUID // insertion order, breaks created_at ties
	now   func() time.Time
}

// MemoryOption configures a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithClock overrides the time source used for lifecycle timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryRepository) {
		r.now = now
	}
}

// NewMemoryRepository creates an empty in-memory notification repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{
		items: make(map[uuid.UUID]*model.Notification),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func clone(n *model.Notification) model.Notification {
	c := *n
	c.Payload = slices.Clone(n.Payload)
	if n.SentAt != nil {
		t := *n.SentAt
		c.SentAt = &t
	}

	return c
}

func (r *MemoryRepository) activeByKey(key string) *model.Notification {
	for _, id := range r.order {
		n := r.items[id]
		if n.DedupKey == key && n.Status.Active() {
			return n
		}
	}

	return nil
}

// Create inserts a new PENDING notification or returns ErrDuplicateActive.
func (r *MemoryRepository) Create(_ context.Context, n model.Notification) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeByKey(n.DedupKey) != nil {
		return model.Notification{}, ErrDuplicateActive
	}

	now := r.now()
	stored := n
	stored.ID = uuid.New()
	stored.Status = model.StatusPending
	stored.Attempts = 0
	stored.ProviderID = ""
	stored.SentAt = nil
	stored.LastError = ""
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if len(stored.Payload) == 0 {
		stored.Payload = []byte("{}")
	}

	r.items[stored.ID] = &stored
	r.order = append(r.order, stored.ID)

	return clone(&stored), nil
}

// GetByID retrieves a notification by its ID.
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return model.Notification{}, ErrNotificationNotFound
	}

	return clone(n), nil
}

// FindActiveDuplicate returns the PENDING or IN_PROGRESS notification with the given dedup key.
func (r *MemoryRepository) FindActiveDuplicate(_ context.Context, dedupKey string) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.activeByKey(dedupKey)
	if n == nil {
		return model.Notification{}, ErrNotificationNotFound
	}

	return clone(n), nil
}

// sorted returns notifications ordered by created_at ascending, insertion order on ties.
func (r *MemoryRepository) sorted() []*model.Notification {
	out := make([]*model.Notification, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}

	slices.SortStableFunc(out, func(a, b *model.Notification) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return out
}

// ListPending returns up to limit PENDING notifications, oldest first.
func (r *MemoryRepository) ListPending(_ context.Context, limit int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]model.Notification, 0, limit)
	for _, n := range r.sorted() {
		if len(result) == limit {
			break
		}
		if n.Status == model.StatusPending {
			result = append(result, clone(n))
		}
	}

	return result, nil
}

// ListAll returns all notifications, newest first.
func (r *MemoryRepository) ListAll(_ context.Context) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.sorted()
	result := make([]model.Notification, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		result = append(result, clone(all[i]))
	}

	return result, nil
}

// transition applies mutate to the record when it is in the from status.
func (r *MemoryRepository) transition(id uuid.UUID, from model.Status, mutate func(*model.Notification)) (model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return model.Notification{}, ErrNotificationNotFound
	}

	if n.Status != from {
		return clone(n), ErrTransitionConflict
	}

	mutate(n)
	n.UpdatedAt = r.now()

	return clone(n), nil
}

// Claim moves a PENDING notification to IN_PROGRESS and increments its attempts.
func (r *MemoryRepository) Claim(_ context.Context, id uuid.UUID) (model.Notification, error) {
	return r.transition(id, model.StatusPending, func(n *model.Notification) {
		n.Status = model.StatusInProgress
		n.Attempts++
	})
}

// MarkSucceeded records a successful delivery of an IN_PROGRESS notification.
func (r *MemoryRepository) MarkSucceeded(_ context.Context, id uuid.UUID, providerID string, sentAt time.Time) (model.Notification, error) {
	return r.transition(id, model.StatusInProgress, func(n *model.Notification) {
		n.Status = model.StatusSuccess
		n.ProviderID = providerID
		n.SentAt = &sentAt
	})
}

// MarkFailed records a failed delivery attempt of an IN_PROGRESS notification.
func (r *MemoryRepository) MarkFailed(_ context.Context, id uuid.UUID, lastError string, maxAttempts int) (model.Notification, error) {
	return r.transition(id, model.StatusInProgress, func(n *model.Notification) {
		n.LastError = model.TruncateError(lastError)
		n.Status = retryStatus(n.Attempts, maxAttempts)
	})
}

// ReleaseStale returns IN_PROGRESS notifications not touched since olderThan to PENDING or FAILED.
func (r *MemoryRepository) ReleaseStale(_ context.Context, olderThan time.Time, maxAttempts int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var released int64
	for _, n := range r.items {
		if n.Status != model.StatusInProgress || !n.UpdatedAt.Before(olderThan) {
			continue
		}

		n.Status = retryStatus(n.Attempts, maxAttempts)
		n.LastError = ErrClaimExpired.Error()
		n.UpdatedAt = r.now()
		released++
	}

	return released, nil
}

func retryStatus(attempts, maxAttempts int) model.Status {
	if attempts >= maxAttempts {
		return model.StatusFailed
	}

	return model.StatusPending
}
