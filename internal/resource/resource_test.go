package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeprep-cli/internal/api"
)

type fetchResult struct {
	data string
	err  error
}

func waitFor[T any](t *testing.T, f *Fetcher[T], state State) Snapshot[T] {
	t.Helper()
	var snap Snapshot[T]
	require.Eventually(t, func() bool {
		snap = f.Snapshot()
		return snap.State == state
	}, 2*time.Second, time.Millisecond, "fetcher never reached %s", state)
	return snap
}

func TestFetcherLoadSuccess(t *testing.T) {
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		return "data-for-" + key, nil
	})

	assert.Equal(t, StateIdle, fetcher.Snapshot().State)

	fetcher.Load(context.Background(), "mira_dev")

	snap := waitFor(t, fetcher, StateReady)
	assert.Equal(t, "mira_dev", snap.Key)
	assert.Equal(t, "data-for-mira_dev", snap.Data)
	assert.Empty(t, snap.Err)
}

func TestFetcherLoadFailure(t *testing.T) {
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		return "", &api.Error{Status: 404, Message: "Profile not found"}
	})

	fetcher.Load(context.Background(), "nobody")

	snap := waitFor(t, fetcher, StateFailed)
	assert.Equal(t, "Profile not found", snap.Err)
	assert.Empty(t, snap.Data)
}

func TestFetcherFailureWithoutAPIErrorUsesGenericMessage(t *testing.T) {
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		return "", errors.New("dial tcp: connection refused")
	})

	fetcher.Load(context.Background(), "mira_dev")

	snap := waitFor(t, fetcher, StateFailed)
	assert.Equal(t, api.GenericErrorMessage, snap.Err)
}

func TestFetcherDropsStaleResponse(t *testing.T) {
	results := map[string]chan fetchResult{
		"slow": make(chan fetchResult, 1),
		"fast": make(chan fetchResult, 1),
	}
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		r := <-results[key]
		return r.data, r.err
	})
	ctx := context.Background()

	fetcher.Load(ctx, "slow")
	fetcher.Load(ctx, "fast")

	results["fast"] <- fetchResult{data: "fast-data"}
	snap := waitFor(t, fetcher, StateReady)
	assert.Equal(t, "fast-data", snap.Data)

	// The superseded response arrives late and must be dropped.
	results["slow"] <- fetchResult{data: "slow-data"}
	time.Sleep(20 * time.Millisecond)

	snap = fetcher.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, "fast", snap.Key)
	assert.Equal(t, "fast-data", snap.Data)
}

func TestFetcherStaleErrorDoesNotClobberNewerData(t *testing.T) {
	results := map[string]chan fetchResult{
		"slow": make(chan fetchResult, 1),
		"fast": make(chan fetchResult, 1),
	}
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		r := <-results[key]
		return r.data, r.err
	})
	ctx := context.Background()

	fetcher.Load(ctx, "slow")
	fetcher.Load(ctx, "fast")

	results["fast"] <- fetchResult{data: "fast-data"}
	waitFor(t, fetcher, StateReady)

	results["slow"] <- fetchResult{err: errors.New("timeout")}
	time.Sleep(20 * time.Millisecond)

	snap := fetcher.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, "fast-data", snap.Data)
	assert.Empty(t, snap.Err)
}

func TestFetcherSameKeyIsNoOp(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		return "data", nil
	})
	ctx := context.Background()

	fetcher.Load(ctx, "mira_dev")
	waitFor(t, fetcher, StateReady)

	fetcher.Load(ctx, "mira_dev")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
}

func TestFetcherReloadRefetches(t *testing.T) {
	var calls atomic.Int32
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		n := calls.Add(1)
		if n == 1 {
			return "", &api.Error{Status: 500, Message: "Server error"}
		}
		return "recovered", nil
	})
	ctx := context.Background()

	fetcher.Load(ctx, "mira_dev")
	waitFor(t, fetcher, StateFailed)

	fetcher.Reload(ctx)

	snap := waitFor(t, fetcher, StateReady)
	assert.Equal(t, "recovered", snap.Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetcherKeyChangeRefetches(t *testing.T) {
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		return "data-for-" + key, nil
	})
	ctx := context.Background()

	fetcher.Load(ctx, "alice")
	waitFor(t, fetcher, StateReady)

	fetcher.Load(ctx, "bob")
	require.Eventually(t, func() bool {
		snap := fetcher.Snapshot()
		return snap.State == StateReady && snap.Data == "data-for-bob"
	}, 2*time.Second, time.Millisecond)
}

func TestFetcherMutateOnlyWhenReady(t *testing.T) {
	block := make(chan struct{})
	fetcher := NewFetcher(func(ctx context.Context, key string) (int, error) {
		<-block
		return 10, nil
	})
	ctx := context.Background()

	fetcher.Mutate(func(n *int) { *n = 99 })
	assert.Equal(t, 0, fetcher.Snapshot().Data, "mutate before ready is a no-op")

	fetcher.Load(ctx, "mira_dev")
	fetcher.Mutate(func(n *int) { *n = 99 })
	close(block)

	snap := waitFor(t, fetcher, StateReady)
	assert.Equal(t, 10, snap.Data)

	fetcher.Mutate(func(n *int) { *n++ })
	assert.Equal(t, 11, fetcher.Snapshot().Data)
}

func TestFetcherNotifiesOnTransitions(t *testing.T) {
	fetcher := NewFetcher(func(ctx context.Context, key string) (string, error) {
		return "data", nil
	})
	changed := make(chan struct{}, 8)
	fetcher.SetOnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	fetcher.Load(context.Background(), "mira_dev")
	waitFor(t, fetcher, StateReady)

	// At least the loading and ready transitions fired.
	require.GreaterOrEqual(t, len(changed), 2)
}
