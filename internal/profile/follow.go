package profile

import (
	"context"
	"errors"
	"sync"

	"codeprep-cli/internal/api"
	"codeprep-cli/internal/resource"
)

var (
	ErrSelfFollow  = errors.New("cannot follow your own profile")
	ErrNotSignedIn = errors.New("sign in to follow users")
	ErrToggleBusy  = errors.New("follow request already in progress")
)

// FollowClient is the slice of the API the toggle needs.
type FollowClient interface {
	Follow(ctx context.Context, username string) error
	Unfollow(ctx context.Context, username string) error
}

// FollowToggle flips the viewer's follow relationship with a profile
// owner. The cached profile is patched optimistically on confirmed success
// only — no re-fetch, and no rollback is needed because nothing changes on
// failure. A busy flag rejects double invocations while a request is
// outstanding.
type FollowToggle struct {
	mu        sync.Mutex
	client    FollowClient
	username  string
	following bool
	busy      bool
	errMsg    string

	profile *resource.Fetcher[Profile]
}

// NewFollowToggle requires an authenticated viewer who is not the profile
// owner.
func NewFollowToggle(client FollowClient, viewer, owner string, following bool, profile *resource.Fetcher[Profile]) (*FollowToggle, error) {
	if viewer == "" {
		return nil, ErrNotSignedIn
	}
	if viewer == owner {
		return nil, ErrSelfFollow
	}
	return &FollowToggle{
		client:    client,
		username:  owner,
		following: following,
		profile:   profile,
	}, nil
}

// Toggle follows or unfollows depending on the current flag. On success it
// flips the flag and adjusts the cached followersCount by +-1; on failure
// it leaves all state unchanged and records an inline error string.
func (t *FollowToggle) Toggle(ctx context.Context) error {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		return ErrToggleBusy
	}
	t.busy = true
	following := t.following
	t.mu.Unlock()

	var err error
	if following {
		err = t.client.Unfollow(ctx, t.username)
	} else {
		err = t.client.Follow(ctx, t.username)
	}

	t.mu.Lock()
	t.busy = false
	if err != nil {
		t.errMsg = api.Display(err)
		t.mu.Unlock()
		return err
	}
	t.following = !following
	t.errMsg = ""
	t.mu.Unlock()

	delta := 1
	if following {
		delta = -1
	}
	if t.profile != nil {
		t.profile.Mutate(func(p *Profile) {
			p.FollowersCount += delta
		})
	}
	return nil
}

// Snapshot returns (isFollowing, busy, inline error).
func (t *FollowToggle) Snapshot() (bool, bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.following, t.busy, t.errMsg
}
