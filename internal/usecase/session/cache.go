package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domain "wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// State is the lifecycle of the cached current-user view.
type State int

const (
	// Uninitialized means no load has been attempted yet.
	Uninitialized State = iota
	// Loading means a resolution against the account repository is in flight.
	Loading
	// Ready means the cache holds a resolved value (or the fallback).
	Ready
)

// Fetcher resolves a session token to the current account, notifications
// attached.
type Fetcher interface {
	FetchCurrent(ctx context.Context, token string) (*domain.Account, error)
}

// Cache is an explicit, injected handle to the "current user" view. It loads
// lazily on first access and only ever refreshes when a caller asks; there
// is no background refresh. When a fallback identity is configured (demo
// mode), an absent session resolves to the fallback instead of failing, so
// the dashboard is never blocked on authentication.
type Cache struct {
	fetcher  Fetcher
	fallback *domain.Account // nil unless demo mode is on
	log      *zap.Logger

	mu      sync.Mutex
	state   State
	token   string
	current *domain.Account

	group singleflight.Group
}

// New creates a new Cache. fallback may be nil, in which case an absent
// session surfaces as NotFoundError.
func New(fetcher Fetcher, fallback *domain.Account, log *zap.Logger) *Cache {
	return &Cache{fetcher: fetcher, fallback: fallback, log: log}
}

// State reports the current lifecycle state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the cached account for the given session token, loading it
// on first access or when the token changed since the last load. Concurrent
// first accesses collapse into a single repository read.
func (c *Cache) Current(ctx context.Context, token string) (*domain.Account, error) {
	c.mu.Lock()
	if c.state == Ready && c.token == token {
		acct := cloneAccount(c.current)
		c.mu.Unlock()
		if acct == nil {
			return nil, apperrors.NewNotFoundError("session", "no authenticated user")
		}
		return acct, nil
	}
	c.mu.Unlock()

	return c.load(ctx, token)
}

// Refresh discards the cached value and re-resolves using the token of the
// last access. It is caller-triggered only, typically after a mutation
// completes.
func (c *Cache) Refresh(ctx context.Context) (*domain.Account, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	return c.load(ctx, token)
}

func (c *Cache) load(ctx context.Context, token string) (*domain.Account, error) {
	result, err, _ := c.group.Do(token, func() (any, error) {
		c.mu.Lock()
		c.state = Loading
		c.token = token
		c.mu.Unlock()

		acct, err := c.fetcher.FetchCurrent(ctx, token)
		if err != nil {
			if _, ok := err.(*apperrors.NotFoundError); !ok {
				// Transient failure: keep serving the previous value when one
				// exists. With nothing cached yet, go back to Uninitialized
				// so the next access retries the fetch.
				c.mu.Lock()
				if c.current != nil {
					c.state = Ready
				} else {
					c.state = Uninitialized
				}
				c.mu.Unlock()
				return nil, err
			}

			if c.fallback != nil {
				c.log.Info("no session, falling back to demo identity",
					zap.String("demo_user", c.fallback.ID))
				acct = cloneAccount(c.fallback)
				err = nil
			}

			if err != nil {
				c.mu.Lock()
				c.state = Uninitialized
				c.current = nil
				c.mu.Unlock()
				return nil, err
			}
		}

		c.mu.Lock()
		c.state = Ready
		c.current = acct
		c.mu.Unlock()

		c.log.Debug("current user resolved", zap.String("user_id", acct.ID))
		return acct, nil
	})
	if err != nil {
		return nil, err
	}
	// Clone per caller: collapsed concurrent loads share one result, and
	// handing out the same pointer would let one caller mutate another's view.
	return cloneAccount(result.(*domain.Account)), nil
}

// cloneAccount returns a copy so callers cannot mutate the cached value.
func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Notifications != nil {
		clone.Notifications = make([]domain.Notification, len(a.Notifications))
		copy(clone.Notifications, a.Notifications)
	}
	return &clone
}
