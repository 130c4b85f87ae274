package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxwellpower/mm-channel-export/internal/mattermost"
)

// fakeUserLookup answers from a fixed map and counts calls per ID.
type fakeUserLookup struct {
	users map[string]string
	calls map[string]int
}

func newFakeUserLookup() *fakeUserLookup {
	return &fakeUserLookup{users: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeUserLookup) GetUser(userID string) (*mattermost.User, error) {
	f.calls[userID]++
	name, ok := f.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &mattermost.User{ID: userID, Username: name}, nil
}

func TestResolverResolvesAndCaches(t *testing.T) {
	lookup := newFakeUserLookup()
	lookup.users["u1"] = "alice"

	r := NewResolver(lookup)

	assert.Equal(t, "alice", r.Username("u1"))
	assert.Equal(t, "alice", r.Username("u1"))
	assert.Equal(t, 1, lookup.calls["u1"], "repeated lookups must hit the cache")
}

func TestResolverCachesFailures(t *testing.T) {
	lookup := newFakeUserLookup()

	r := NewResolver(lookup)

	assert.Equal(t, "u404", r.Username("u404"), "unresolvable IDs come back verbatim")
	assert.Equal(t, "u404", r.Username("u404"))
	assert.Equal(t, 1, lookup.calls["u404"], "failed lookups are cached too")
}

func TestResolverEmptyID(t *testing.T) {
	lookup := newFakeUserLookup()

	r := NewResolver(lookup)

	assert.Equal(t, "unknown-user", r.Username(""))
	assert.Empty(t, lookup.calls)
}

func TestResolverBlankUsername(t *testing.T) {
	lookup := newFakeUserLookup()
	lookup.users["u1"] = ""

	r := NewResolver(lookup)

	assert.Equal(t, "u1", r.Username("u1"), "a user record without a username falls back to the ID")
}
