package migration

import (
	"context"
	"errors"
)

// UserCache resolves usernames to remote handles, memoizing successful
// resolutions only. An unresolvable username is a permanent failure for the
// row; negative results are not cached since the migration is single-pass.
type UserCache struct {
	gateway RemoteIssueGateway
	entries map[string]UserHandle
}

// NewUserCache constructs a user cache over the provided gateway.
func NewUserCache(gateway RemoteIssueGateway) (*UserCache, error) {
	if gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	return &UserCache{gateway: gateway, entries: make(map[string]UserHandle)}, nil
}

// Resolve returns the remote handle for the username. A missing remote user
// surfaces as UnknownUserError regardless of cache state.
func (cache *UserCache) Resolve(executionContext context.Context, username string) (UserHandle, error) {
	if cachedHandle, handleCached := cache.entries[username]; handleCached {
		return cachedHandle, nil
	}

	fetchedHandle, fetchError := cache.gateway.FetchUser(executionContext, username)
	if fetchError != nil {
		if errors.Is(fetchError, ErrRemoteNotFound) {
			return UserHandle{}, UnknownUserError{Username: username}
		}
		return UserHandle{}, fetchError
	}

	cache.entries[username] = fetchedHandle
	return fetchedHandle, nil
}
