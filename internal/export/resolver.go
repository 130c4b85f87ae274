package export

import (
	"log"

	"github.com/maxwellpower/mm-channel-export/internal/mattermost"
)

// UserLookup is the part of the API client the resolver needs.
type UserLookup interface {
	GetUser(userID string) (*mattermost.User, error)
}

// Resolver maps user IDs to usernames, caching every answer for the
// duration of one export run. Failed lookups cache the raw ID so each
// user costs at most one API call.
type Resolver struct {
	users UserLookup
	cache map[string]string
}

func NewResolver(users UserLookup) *Resolver {
	return &Resolver{
		users: users,
		cache: make(map[string]string),
	}
}

// Username resolves a user ID to a username. Posts without a user ID
// come back as "unknown-user"; IDs the API cannot resolve come back
// verbatim.
func (r *Resolver) Username(userID string) string {
	if userID == "" {
		return "unknown-user"
	}

	// Check cache first
	if name, ok := r.cache[userID]; ok {
		return name
	}

	name := userID
	user, err := r.users.GetUser(userID)
	if err != nil {
		log.Printf("Could not resolve user %s: %v", userID, err)
	} else if user.Username != "" {
		name = user.Username
	}

	// Cache the result
	r.cache[userID] = name
	return name
}
