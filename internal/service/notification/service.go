package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/gateway"
	"github.com/aliskhannn/order-notifier/internal/metrics"
	"github.com/aliskhannn/order-notifier/internal/model"
	notifrepo "github.com/aliskhannn/order-notifier/internal/repository/notification"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

var (
	ErrInvalidDraft       = errors.New("invalid notification")
	ErrAlreadyDelivered   = errors.New("notification already delivered")
	ErrPermanentlyFailed  = errors.New("notification permanently failed")
	ErrDispatchInProgress = errors.New("notification is being dispatched")
	ErrDeliveryFailed     = errors.New("delivery failed")
)

// enqueueAttempts bounds how often a lost insert race is retried.
const enqueueAttempts = 3

type notificationRepository interface {
	Create(ctx context.Context, n model.Notification) (model.Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Notification, error)
	FindActiveDuplicate(ctx context.Context, dedupKey string) (model.Notification, error)
	ListPending(ctx context.Context, limit int) ([]model.Notification, error)
	ListAll(ctx context.Context) ([]model.Notification, error)
	Claim(ctx context.Context, id uuid.UUID) (model.Notification, error)
	MarkSucceeded(ctx context.Context, id uuid.UUID, providerID string, sentAt time.Time) (model.Notification, error)
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, maxAttempts int) (model.Notification, error)
	ReleaseStale(ctx context.Context, olderThan time.Time, maxAttempts int) (int64, error)
}

type deliverer interface {
	Deliver(ctx context.Context, channel model.Channel, msg gateway.Message) (gateway.Receipt, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Options tunes delivery behaviour.
type Options struct {
	MaxRetries    int
	SendTimeout   time.Duration
	DedupDefaults []string
	DedupByType   map[string][]string
	CacheStrategy retry.Strategy
}

const (
	defaultMaxRetries  = 5
	defaultSendTimeout = 5 * time.Second
)

type Service struct {
	repo       notificationRepository
	gateway    deliverer
	cache      cache
	validator  *validator.Validate
	keys       DedupKeys
	maxRetries int
	timeout    time.Duration
	strategy   retry.Strategy
	now        func() time.Time
}

// NewService creates a notification service. cache may be nil.
func NewService(repo notificationRepository, gw deliverer, cache cache, opts Options) *Service {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	return &Service{
		repo:       repo,
		gateway:    gw,
		cache:      cache,
		validator:  validator.New(),
		keys:       NewDedupKeys(opts.DedupDefaults, opts.DedupByType),
		maxRetries: opts.MaxRetries,
		timeout:    opts.SendTimeout,
		strategy:   opts.CacheStrategy,
		now:        time.Now,
	}
}

// MaxRetries returns the attempt ceiling applied to every notification.
func (s *Service) MaxRetries() int {
	return s.maxRetries
}

func (s *Service) validate(d model.Draft) error {
	if err := s.validator.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, err.Error())
	}

	if d.Channel == model.ChannelEmail {
		if err := s.validator.Var(d.Recipient, "email"); err != nil {
			return fmt.Errorf("%w: recipient must be an email address", ErrInvalidDraft)
		}
	}

	return nil
}

// EnqueueIfNotDuplicate persists a PENDING notification unless an active one
// with the same identity already exists, in which case that one is returned.
func (s *Service) EnqueueIfNotDuplicate(ctx context.Context, d model.Draft) (model.Notification, error) {
	if err := s.validate(d); err != nil {
		metrics.Enqueued.WithLabelValues(d.Type, metrics.OutcomeInvalid).Inc()
		return model.Notification{}, err
	}

	key, err := s.keys.Build(d)
	if err != nil {
		metrics.Enqueued.WithLabelValues(d.Type, metrics.OutcomeInvalid).Inc()
		return model.Notification{}, fmt.Errorf("%w: %s", ErrInvalidDraft, err.Error())
	}

	for i := 0; i < enqueueAttempts; i++ {
		existing, err := s.repo.FindActiveDuplicate(ctx, key)
		if err == nil {
			zlog.Logger.Info().
				Str("id", existing.ID.String()).
				Str("type", d.Type).
				Str("recipient", d.Recipient).
				Msg("duplicate notification skipped")
			metrics.Enqueued.WithLabelValues(d.Type, metrics.OutcomeDuplicate).Inc()
			return existing, nil
		}
		if !errors.Is(err, notifrepo.ErrNotificationNotFound) {
			return model.Notification{}, fmt.Errorf("find duplicate: %w", err)
		}

		created, err := s.repo.Create(ctx, model.Notification{
			Channel:   d.Channel,
			Type:      d.Type,
			Recipient: d.Recipient,
			UserID:    d.UserID,
			Payload:   d.Payload,
			Template:  d.Template,
			DedupKey:  key,
		})
		if errors.Is(err, notifrepo.ErrDuplicateActive) {
			// a concurrent enqueue won the insert; return its record
			continue
		}
		if err != nil {
			return model.Notification{}, fmt.Errorf("create notification: %w", err)
		}

		s.cacheStatus(ctx, created.ID, created.Status)
		metrics.Enqueued.WithLabelValues(d.Type, metrics.OutcomeEnqueued).Inc()
		zlog.Logger.Info().
			Str("id", created.ID.String()).
			Str("type", created.Type).
			Str("channel", string(created.Channel)).
			Msg("notification enqueued")

		return created, nil
	}

	return model.Notification{}, fmt.Errorf("enqueue notification: %w", notifrepo.ErrDuplicateActive)
}

// EnqueueAndDispatch enqueues the draft and delivers it immediately. The
// returned notification reflects the state after the delivery attempt.
func (s *Service) EnqueueAndDispatch(ctx context.Context, d model.Draft) (model.Notification, model.DispatchResult, error) {
	n, err := s.EnqueueIfNotDuplicate(ctx, d)
	if err != nil {
		return model.Notification{}, model.DispatchResult{}, err
	}

	updated, result, err := s.dispatch(ctx, n.ID)
	if updated.ID == uuid.Nil {
		updated = n
	}

	return updated, result, err
}

// GetNotification returns a notification by id.
func (s *Service) GetNotification(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.Notification{}, fmt.Errorf("get notification: %w", err)
	}

	return n, nil
}

// GetAllNotifications returns every notification, newest first.
func (s *Service) GetAllNotifications(ctx context.Context) ([]model.Notification, error) {
	notifications, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all notifications: %w", err)
	}

	return notifications, nil
}

// GetNotificationStatus returns the status of a notification, served from the
// cache when possible.
func (s *Service) GetNotificationStatus(ctx context.Context, id uuid.UUID) (model.Status, error) {
	if s.cache != nil {
		status, err := s.cache.GetWithRetry(ctx, s.strategy, id.String())
		if err == nil {
			return model.Status(status), nil
		}
		if !errors.Is(err, redis.Nil) {
			zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get notification status from cache")
		}
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get notification status: %w", err)
	}

	s.cacheStatus(ctx, id, n.Status)

	return n.Status, nil
}

func (s *Service) cacheStatus(ctx context.Context, id uuid.UUID, status model.Status) {
	if s.cache == nil {
		return
	}

	err := s.cache.SetWithRetry(ctx, s.strategy, id.String(), string(status))
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache notification")
	}
}
