package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreStartsAnonymous(t *testing.T) {
	store := NewStore()

	_, ok := store.Current()
	assert.False(t, ok)
	assert.False(t, store.IsOwn("mira_dev"))
}

func TestStoreSetAndClear(t *testing.T) {
	store := NewStore()
	store.SetUser(User{ID: "u-1", Username: "mira_dev", Email: "mira@example.com"})

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "mira_dev", current.Username)
	assert.True(t, store.IsOwn("mira_dev"))
	assert.False(t, store.IsOwn("sam_codes"))

	store.Clear()
	_, ok = store.Current()
	assert.False(t, ok)
	assert.False(t, store.IsOwn("mira_dev"))
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	store.SetUser(User{Username: "mira_dev"})

	current, _ := store.Current()
	current.Username = "mutated"

	fresh, _ := store.Current()
	assert.Equal(t, "mira_dev", fresh.Username)
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	store := NewStore()
	var changes int
	store.Subscribe(func() { changes++ })

	store.SetUser(User{Username: "mira_dev"})
	store.Clear()

	assert.Equal(t, 2, changes)
}
