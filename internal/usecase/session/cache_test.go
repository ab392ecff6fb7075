package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// fakeFetcher returns a programmed sequence of results and counts calls.
type fakeFetcher struct {
	calls   atomic.Int64
	account *domain.Account
	err     error
}

func (f *fakeFetcher) FetchCurrent(ctx context.Context, token string) (*domain.Account, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	clone := *f.account
	return &clone, nil
}

func testUser() *domain.Account {
	return &domain.Account{
		ID:       "id-1",
		Email:    "alice@example.com",
		Username: "alice",
		Balance:  13000000,
		Notifications: []domain.Notification{
			{ID: "n1", UserID: "id-1", Message: "Deposit of 5,000 received."},
		},
	}
}

func TestCurrent_LazyLoadOnFirstAccess(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))

	assert.Equal(t, Uninitialized, cache.State())

	acct, err := cache.Current(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "id-1", acct.ID)
	assert.Equal(t, Ready, cache.State())
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestCurrent_SecondAccessServedFromCache(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := cache.Current(ctx, "tok")
	require.NoError(t, err)
	second, err := cache.Current(ctx, "tok")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fetcher.calls.Load(), "second read must not hit the fetcher")
}

func TestCurrent_TokenChangeTriggersReload(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := cache.Current(ctx, "tok-a")
	require.NoError(t, err)
	_, err = cache.Current(ctx, "tok-b")
	require.NoError(t, err)

	assert.Equal(t, int64(2), fetcher.calls.Load())
}

func TestRefresh_ReResolvesWithLastToken(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := cache.Current(ctx, "tok")
	require.NoError(t, err)

	fetcher.account.Balance = 13005000
	acct, err := cache.Refresh(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(13005000), acct.Balance)
	assert.Equal(t, int64(2), fetcher.calls.Load())
}

func TestCurrent_NoSessionNoFallback(t *testing.T) {
	fetcher := &fakeFetcher{err: apperrors.NewNotFoundError("session", "no session token")}
	cache := New(fetcher, nil, zaptest.NewLogger(t))

	acct, err := cache.Current(context.Background(), "")

	assert.Nil(t, acct)
	var nfErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestCurrent_NoSessionFallsBackToDemoIdentity(t *testing.T) {
	fetcher := &fakeFetcher{err: apperrors.NewNotFoundError("session", "no session token")}
	fallback := &domain.Account{
		ID:       "pro-trader-001",
		Email:    "trader@example.com",
		Username: "trader",
		IsAdmin:  true,
		Balance:  130000000,
	}
	cache := New(fetcher, fallback, zaptest.NewLogger(t))

	acct, err := cache.Current(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "pro-trader-001", acct.ID)
	assert.Equal(t, int64(130000000), acct.Balance)
	assert.Equal(t, Ready, cache.State())
}

func TestCurrent_TransientErrorSurfacesButKeepsState(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := cache.Current(ctx, "tok")
	require.NoError(t, err)

	fetcher.err = errors.New("repository unreachable")
	_, err = cache.Refresh(ctx)
	assert.Error(t, err)
	assert.Equal(t, Ready, cache.State())

	// Previous value still served once the store recovers or for same-token
	// reads.
	fetcher.err = nil
	again, err := cache.Current(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestCurrent_ReturnedValueIsACopy(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	acct, err := cache.Current(ctx, "tok")
	require.NoError(t, err)

	acct.Balance = -1
	acct.Notifications[0].Message = "tampered"

	fresh, err := cache.Current(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(13000000), fresh.Balance)
	assert.Equal(t, "Deposit of 5,000 received.", fresh.Notifications[0].Message)
}

func TestCurrent_TransientErrorOnFirstLoadRetriedAfterRecovery(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser(), err: errors.New("repository unreachable")}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := cache.Current(ctx, "tok")
	require.Error(t, err)
	assert.Equal(t, Uninitialized, cache.State(), "a failed first load must not pin the cache")

	fetcher.err = nil
	acct, err := cache.Current(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "id-1", acct.ID)
	assert.Equal(t, Ready, cache.State())
	assert.Equal(t, int64(2), fetcher.calls.Load(), "the recovered store must be re-queried")
}

// blockingFetcher holds every fetch until released so concurrent accesses
// are guaranteed to share one in-flight load.
type blockingFetcher struct {
	calls   atomic.Int64
	entered chan struct{}
	release chan struct{}
	account *domain.Account
}

func (f *blockingFetcher) FetchCurrent(ctx context.Context, token string) (*domain.Account, error) {
	f.calls.Add(1)
	f.entered <- struct{}{}
	<-f.release
	clone := *f.account
	return &clone, nil
}

func TestCurrent_CollapsedCallersGetIndependentCopies(t *testing.T) {
	fetcher := &blockingFetcher{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
		account: testUser(),
	}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	type result struct {
		acct *domain.Account
		err  error
	}
	results := make(chan result, 2)

	go func() {
		acct, err := cache.Current(ctx, "tok")
		results <- result{acct, err}
	}()
	<-fetcher.entered
	go func() {
		acct, err := cache.Current(ctx, "tok")
		results <- result{acct, err}
	}()
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)

	first := <-results
	second := <-results
	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.LessOrEqual(t, fetcher.calls.Load(), int64(2))

	assert.NotSame(t, first.acct, second.acct)
	first.acct.Balance = -1
	assert.Equal(t, int64(13000000), second.acct.Balance,
		"one caller's mutation must not leak into another caller's view")
}

func TestCurrent_ConcurrentFirstAccessesCollapse(t *testing.T) {
	fetcher := &fakeFetcher{account: testUser()}
	cache := New(fetcher, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	const readers = 16
	done := make(chan error, readers)
	for i := 0; i < readers; i++ {
		go func() {
			_, err := cache.Current(ctx, "tok")
			done <- err
		}()
	}
	for i := 0; i < readers; i++ {
		require.NoError(t, <-done)
	}

	assert.LessOrEqual(t, fetcher.calls.Load(), int64(readers))
	assert.GreaterOrEqual(t, fetcher.calls.Load(), int64(1))
}
