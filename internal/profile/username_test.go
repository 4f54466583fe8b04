package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCheckDelay = 20 * time.Millisecond

// recordingCheck is an AvailabilityFunc that records every username it was
// asked about.
type recordingCheck struct {
	mu        sync.Mutex
	calls     []string
	available bool
	err       error
}

func (r *recordingCheck) check(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	r.calls = append(r.calls, username)
	r.mu.Unlock()
	return r.available, r.err
}

func (r *recordingCheck) called() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func waitForSettled(t *testing.T, checker *UsernameChecker, changed <-chan struct{}) CheckState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		state, _ := checker.Snapshot()
		if state != CheckChecking {
			return state
		}
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("checker never left the checking state")
		}
	}
}

func newTestChecker(t *testing.T, original string, check AvailabilityFunc) (*UsernameChecker, chan struct{}) {
	t.Helper()
	checker := NewUsernameChecker(original, testCheckDelay, check)
	t.Cleanup(checker.Close)
	changed := make(chan struct{}, 16)
	checker.SetOnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	return checker, changed
}

func TestValidUsernameFormat(t *testing.T) {
	tests := []struct {
		candidate string
		want      bool
	}{
		{"abc", true},
		{"mira_dev", true},
		{"A1_", true},
		{"ab", false},
		{"", false},
		{"this_name_is_far_too_long", false},
		{"has space", false},
		{"dash-ed", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidUsernameFormat(tt.candidate), "candidate %q", tt.candidate)
	}
}

func TestUsernameCheckerUnchangedStaysIdle(t *testing.T) {
	rec := &recordingCheck{available: true}
	checker, _ := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("mira_dev")

	state, value := checker.Snapshot()
	assert.Equal(t, CheckIdle, state)
	assert.Equal(t, "mira_dev", value)

	time.Sleep(2 * testCheckDelay)
	assert.Empty(t, rec.called(), "no availability request for the unchanged name")
}

func TestUsernameCheckerInvalidFormatIsSynchronous(t *testing.T) {
	rec := &recordingCheck{available: true}
	checker, _ := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("ab")

	state, _ := checker.Snapshot()
	assert.Equal(t, CheckInvalid, state)

	time.Sleep(2 * testCheckDelay)
	assert.Empty(t, rec.called())
}

func TestUsernameCheckerDebouncesRapidTyping(t *testing.T) {
	rec := &recordingCheck{available: true}
	checker, changed := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("new")
	checker.Input("new_n")
	checker.Input("new_name")

	state, _ := checker.Snapshot()
	require.Equal(t, CheckChecking, state)

	state = waitForSettled(t, checker, changed)
	assert.Equal(t, CheckAvailable, state)
	assert.Equal(t, []string{"new_name"}, rec.called(), "only the settled value is checked")
}

func TestUsernameCheckerUnavailable(t *testing.T) {
	rec := &recordingCheck{available: false}
	checker, changed := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("taken_name")

	assert.Equal(t, CheckUnavailable, waitForSettled(t, checker, changed))
}

func TestUsernameCheckerErrorFallsBackToIdle(t *testing.T) {
	rec := &recordingCheck{err: errors.New("connection refused")}
	checker, changed := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("new_name")

	assert.Equal(t, CheckIdle, waitForSettled(t, checker, changed))
}

func TestUsernameCheckerInvalidCancelsPendingCheck(t *testing.T) {
	rec := &recordingCheck{available: true}
	checker, _ := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("new_name")
	checker.Input("ab")

	state, _ := checker.Snapshot()
	assert.Equal(t, CheckInvalid, state)

	time.Sleep(3 * testCheckDelay)
	state, _ = checker.Snapshot()
	assert.Equal(t, CheckInvalid, state)
	assert.Empty(t, rec.called())
}

func TestUsernameCheckerCloseCancels(t *testing.T) {
	rec := &recordingCheck{available: true}
	checker, _ := newTestChecker(t, "mira_dev", rec.check)

	checker.Input("new_name")
	checker.Close()

	time.Sleep(3 * testCheckDelay)
	assert.Empty(t, rec.called())
}
