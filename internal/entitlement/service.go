package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pressops/kiosk/internal/catalog"
	"github.com/pressops/kiosk/internal/domain"
	"github.com/pressops/kiosk/internal/identity"
	"github.com/pressops/kiosk/internal/pkg/ctxlog"
	"github.com/pressops/kiosk/internal/pkg/metrics"
)

var (
	// ErrSubscriptionNotFound is returned when a subscription does not exist.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrAlreadyCancelled is returned when cancelling an already-cancelled subscription.
	ErrAlreadyCancelled = errors.New("subscription already cancelled")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrMagazineNotFound is returned when the referenced magazine does not
	// exist or is soft-deleted.
	ErrMagazineNotFound = errors.New("magazine not found")
)

// subscriptionPeriod is how long a newly activated subscription stays valid.
const subscriptionPeriod = 30 * 24 * time.Hour

// newsstandCacheTTL bounds staleness of the cached newsstand view.
const newsstandCacheTTL = 30 * time.Second

// UserReader resolves users for referent checks.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// MagazineReader resolves magazines for referent checks.
type MagazineReader interface {
	GetMagazineByID(ctx context.Context, id string) (*domain.Magazine, error)
}

// Cache is an optional read-through cache for the newsstand view.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service implements subscription business logic.
type Service struct {
	repo      Repository
	users     UserReader
	magazines MagazineReader
	cache     Cache
	cacheTTL  time.Duration

	now func() time.Time
}

// NewService creates a new entitlement service. cache may be nil, in which
// case the newsstand view is always computed from the database. A
// non-positive cacheTTL falls back to the default.
func NewService(repo Repository, users UserReader, magazines MagazineReader, cache Cache, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = newsstandCacheTTL
	}
	return &Service{
		repo:      repo,
		users:     users,
		magazines: magazines,
		cache:     cache,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Activate creates a new subscription for the user and magazine, valid for
// thirty days from now. Each call inserts a fresh row; an existing active
// subscription for the same pair does not block another one.
func (s *Service) Activate(ctx context.Context, userID, magazineID string) (*domain.Subscription, error) {
	if _, err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.resolveMagazine(ctx, magazineID); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		UserID:     userID,
		MagazineID: magazineID,
		ValidUntil: s.now().Add(subscriptionPeriod),
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	metrics.SubscriptionActivations.Inc()
	s.invalidateNewsstand(ctx, userID)

	ctxlog.FromContext(ctx).Info("subscription activated",
		"subscription_id", sub.ID,
		"user_id", userID,
		"magazine_id", magazineID,
		"valid_until", sub.ValidUntil,
	)

	return sub, nil
}

// CancelAll cancels every not-yet-cancelled subscription the user holds for
// the magazine and returns how many rows were cancelled. A pair with nothing
// to cancel returns zero without error.
func (s *Service) CancelAll(ctx context.Context, userID, magazineID string) (int64, error) {
	if _, err := s.resolveUser(ctx, userID); err != nil {
		return 0, err
	}
	if _, err := s.resolveMagazine(ctx, magazineID); err != nil {
		return 0, err
	}

	count, err := s.repo.CancelPair(ctx, userID, magazineID)
	if err != nil {
		return 0, fmt.Errorf("cancel subscriptions: %w", err)
	}

	if count > 0 {
		metrics.SubscriptionCancellations.Add(float64(count))
		s.invalidateNewsstand(ctx, userID)
	}

	ctxlog.FromContext(ctx).Info("subscriptions cancelled",
		"user_id", userID,
		"magazine_id", magazineID,
		"count", count,
	)

	return count, nil
}

// CancelSubscription cancels a single subscription row by id.
func (s *Service) CancelSubscription(ctx context.Context, id string) error {
	sub, err := s.repo.GetSubscriptionByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.CancelSubscription(ctx, id); err != nil {
		return err
	}

	metrics.SubscriptionCancellations.Inc()
	s.invalidateNewsstand(ctx, sub.UserID)

	ctxlog.FromContext(ctx).Info("subscription cancelled",
		"subscription_id", id,
		"user_id", sub.UserID,
	)

	return nil
}

// GetSubscriptionByID returns a single subscription row.
func (s *Service) GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.repo.GetSubscriptionByID(ctx, id)
}

// ListAll returns every subscription row, cancelled ones included.
func (s *Service) ListAll(ctx context.Context) ([]domain.Subscription, error) {
	return s.repo.ListSubscriptions(ctx)
}

// ListByUser returns the user's subscription history, cancelled rows
// included, with the user and magazine records attached.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Subscription, error) {
	if _, err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListUserSubscriptions(ctx, userID)
}

// Newsstand returns every non-deleted magazine with a flag telling whether
// the user currently holds an active subscription to it. Entitlement is
// strict: a subscription valid until exactly now does not count.
func (s *Service) Newsstand(ctx context.Context, userID string) ([]domain.MagazineWithEntitlement, error) {
	if _, err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}

	cacheKey := newsstandKey(userID)
	if s.cache != nil {
		var cached []domain.MagazineWithEntitlement
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		switch {
		case err != nil:
			metrics.NewsstandCacheHits.WithLabelValues("error").Inc()
			ctxlog.FromContext(ctx).Warn("newsstand cache read failed", "error", err)
		case hit:
			metrics.NewsstandCacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.NewsstandCacheHits.WithLabelValues("miss").Inc()
		}
	}

	entries, err := s.repo.ListMagazinesWithEntitlement(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list magazines with entitlement: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, entries, s.cacheTTL); err != nil {
			ctxlog.FromContext(ctx).Warn("newsstand cache write failed", "error", err)
		}
	}

	return entries, nil
}

func (s *Service) resolveUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

func (s *Service) resolveMagazine(ctx context.Context, magazineID string) (*domain.Magazine, error) {
	mag, err := s.magazines.GetMagazineByID(ctx, magazineID)
	if err != nil {
		if errors.Is(err, catalog.ErrMagazineNotFound) {
			return nil, ErrMagazineNotFound
		}
		return nil, fmt.Errorf("resolve magazine: %w", err)
	}
	if mag.IsDeleted() {
		return nil, ErrMagazineNotFound
	}
	return mag, nil
}

func (s *Service) invalidateNewsstand(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, newsstandKey(userID)); err != nil {
		ctxlog.FromContext(ctx).Warn("newsstand cache invalidation failed", "error", err)
	}
}

func newsstandKey(userID string) string {
	return "newsstand:" + userID
}
