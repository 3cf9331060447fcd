package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
)

const (
	testSweepInterval = time.Minute
	testThreshold     = 30 * time.Minute
)

func TestSweep_ReclaimsOnlyStaleAccounts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc, st := newTestService(t, clock, Options{})
	sweeper := NewSweeper(st, clock, testSweepInterval, testThreshold)
	ctx := context.Background()

	_, err := svc.Login(ctx, testUser, testPassword, "dev1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "mr2", "8888", "dev2")
	require.NoError(t, err)

	// mr2 stays live, mr1 goes silent.
	clock.Advance(testThreshold + time.Minute)
	_, err = svc.Login(ctx, "mr2", "8888", "dev2")
	require.NoError(t, err)

	reclaimed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)

	stale := getAccount(t, st, testUser)
	assert.Equal(t, domain.StatusLoggedOut, stale.Status)
	assert.Empty(t, stale.OwnerDevice)
	assert.Empty(t, stale.SessionToken)
	assert.Empty(t, stale.PendingDevice)
	assert.Empty(t, stale.PendingRequestID)

	live := getAccount(t, st, "mr2")
	assert.Equal(t, domain.StatusActive, live.Status)
	assert.Equal(t, "dev2", live.OwnerDevice)
}

func TestSweep_ClearsPendingRequestOfStaleAccount(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc, st := newTestService(t, clock, Options{})
	sweeper := NewSweeper(st, clock, testSweepInterval, testThreshold)
	ctx := context.Background()

	_, err := svc.Login(ctx, testUser, testPassword, "dev1")
	require.NoError(t, err)
	_, err = svc.Login(ctx, testUser, testPassword, "dev2")
	require.NoError(t, err)

	clock.Advance(testThreshold + time.Minute)

	reclaimed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)

	acct := getAccount(t, st, testUser)
	assert.Equal(t, domain.StatusLoggedOut, acct.Status)
	assert.Empty(t, acct.PendingDevice)
	assert.Empty(t, acct.PendingRequestID)
}

func TestSweep_IgnoresUnownedAccounts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	_, st := newTestService(t, clock, Options{})
	sweeper := NewSweeper(st, clock, testSweepInterval, testThreshold)

	clock.Advance(testThreshold * 3)

	reclaimed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reclaimed)
}

func TestSweep_ReclaimedAccountCanBeReclaimed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc, st := newTestService(t, clock, Options{})
	sweeper := NewSweeper(st, clock, testSweepInterval, testThreshold)
	ctx := context.Background()

	_, err := svc.Login(ctx, testUser, testPassword, "dev1")
	require.NoError(t, err)

	clock.Advance(testThreshold + time.Minute)
	_, err = sweeper.Sweep(ctx)
	require.NoError(t, err)

	// After reclamation any device claims the account directly.
	result, err := svc.Login(ctx, testUser, testPassword, "dev2")
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.Equal(t, "dev2", getAccount(t, st, testUser).OwnerDevice)
}

func TestSweeper_RunLoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc, st := newTestService(t, clock, Options{})
	sweeper := NewSweeper(st, clock, testSweepInterval, testThreshold)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := svc.Login(ctx, testUser, testPassword, "dev1")
	require.NoError(t, err)

	go sweeper.Start(ctx)
	defer sweeper.Stop()

	// Wait for the loop to arm its ticker, then jump past the threshold.
	clock.BlockUntil(1)
	clock.Advance(testThreshold + 2*testSweepInterval)

	assert.Eventually(t, func() bool {
		return getAccount(t, st, testUser).Status == domain.StatusLoggedOut
	}, 2*time.Second, 10*time.Millisecond)
}
