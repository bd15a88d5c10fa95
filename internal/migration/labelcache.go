package migration

import (
	"context"
	"errors"
)

// LabelResolutionOutcome tags how a label resolution was satisfied.
type LabelResolutionOutcome string

// Label resolution outcomes.
const (
	LabelOutcomeCached  LabelResolutionOutcome = "cached"
	LabelOutcomeFound   LabelResolutionOutcome = "found"
	LabelOutcomeCreated LabelResolutionOutcome = "created"
)

// LabelResolution carries a resolved label handle and how it was obtained.
type LabelResolution struct {
	Handle  LabelHandle
	Outcome LabelResolutionOutcome
}

// LabelCache resolves label names to remote handles, creating missing labels
// remotely and memoizing every resolution for the process lifetime. It is not
// safe for concurrent use; the migration is strictly sequential.
type LabelCache struct {
	gateway RemoteIssueGateway
	entries map[string]LabelHandle
}

// NewLabelCache constructs a label cache over the provided gateway.
func NewLabelCache(gateway RemoteIssueGateway) (*LabelCache, error) {
	if gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	return &LabelCache{gateway: gateway, entries: make(map[string]LabelHandle)}, nil
}

// Resolve returns the remote handle for the named label. The lookup order is
// explicit: in-memory cache, remote fetch, remote create with the provided
// color. Identity is the exact label name.
func (cache *LabelCache) Resolve(executionContext context.Context, labelName string, labelColor string) (LabelResolution, error) {
	if cachedHandle, handleCached := cache.entries[labelName]; handleCached {
		return LabelResolution{Handle: cachedHandle, Outcome: LabelOutcomeCached}, nil
	}

	fetchedHandle, fetchError := cache.gateway.FetchLabel(executionContext, labelName)
	if fetchError == nil {
		cache.entries[labelName] = fetchedHandle
		return LabelResolution{Handle: fetchedHandle, Outcome: LabelOutcomeFound}, nil
	}
	if !errors.Is(fetchError, ErrRemoteNotFound) {
		return LabelResolution{}, fetchError
	}

	createdHandle, createError := cache.gateway.CreateLabel(executionContext, labelName, labelColor)
	if createError != nil {
		return LabelResolution{}, createError
	}

	cache.entries[labelName] = createdHandle
	return LabelResolution{Handle: createdHandle, Outcome: LabelOutcomeCreated}, nil
}
