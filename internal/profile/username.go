package profile

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"
)

// CheckState is the availability checker's current phase.
type CheckState int

const (
	CheckIdle CheckState = iota
	CheckInvalid
	CheckChecking
	CheckAvailable
	CheckUnavailable
)

func (s CheckState) String() string {
	switch s {
	case CheckInvalid:
		return "invalid"
	case CheckChecking:
		return "checking"
	case CheckAvailable:
		return "available"
	case CheckUnavailable:
		return "unavailable"
	default:
		return "idle"
	}
}

// DefaultCheckDelay is the quiet period after the last keystroke before an
// availability request is issued.
const DefaultCheckDelay = 500 * time.Millisecond

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// ValidUsernameFormat reports whether candidate passes the synchronous
// format rule: alphanumeric plus underscore, length 3-20.
func ValidUsernameFormat(candidate string) bool {
	return usernamePattern.MatchString(candidate)
}

// AvailabilityFunc asks the server whether username is free.
type AvailabilityFunc func(ctx context.Context, username string) (bool, error)

// UsernameChecker debounces availability checks while the user types a new
// username. Transitions:
//
//	idle -> invalid | checking -> available | unavailable | idle (on error)
//
// An input equal to the original username stays idle; a format failure is
// reported synchronously without a network call; otherwise the check fires
// after the delay unless a newer input supersedes it first. A token taken
// at scheduling time guards both the timer and the response, so at most
// one in-flight request exists per settled input and late replies for
// superseded values are dropped.
type UsernameChecker struct {
	mu       sync.Mutex
	original string
	delay    time.Duration
	check    AvailabilityFunc
	log      *slog.Logger

	state    CheckState
	value    string
	token    int
	timer    *time.Timer
	onChange func()
}

func NewUsernameChecker(original string, delay time.Duration, check AvailabilityFunc) *UsernameChecker {
	if delay <= 0 {
		delay = DefaultCheckDelay
	}
	return &UsernameChecker{
		original: original,
		delay:    delay,
		check:    check,
		log:      slog.Default(),
	}
}

// SetOnChange installs a render hook fired after every state transition.
func (c *UsernameChecker) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Input feeds the latest candidate value. Any pending check for a previous
// value is canceled.
func (c *UsernameChecker) Input(value string) {
	c.mu.Lock()
	c.token++
	c.value = value
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	switch {
	case value == c.original:
		c.state = CheckIdle
	case !ValidUsernameFormat(value):
		c.state = CheckInvalid
	default:
		c.state = CheckChecking
		token := c.token
		c.timer = time.AfterFunc(c.delay, func() {
			c.fire(token, value)
		})
	}
	c.mu.Unlock()
	c.notify()
}

func (c *UsernameChecker) fire(token int, value string) {
	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	available, err := c.check(context.Background(), value)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		return
	}
	if err != nil {
		// Check failures mean "unknown", not "unavailable": log and fall
		// back to idle instead of surfacing a field error.
		c.log.Warn("username availability check failed", "username", value, "error", err)
		c.state = CheckIdle
	} else if available {
		c.state = CheckAvailable
	} else {
		c.state = CheckUnavailable
	}
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns the current state and the value it refers to.
func (c *UsernameChecker) Snapshot() (CheckState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.value
}

// Close cancels any pending check. Called on component teardown.
func (c *UsernameChecker) Close() {
	c.mu.Lock()
	c.token++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}

func (c *UsernameChecker) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
