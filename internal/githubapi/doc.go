// Package githubapi implements the GitHub REST collaborator used by the
// migration: user, organization, and repository lookups, label fetch and
// creation, issue creation and state edits, and the rate-limit budget read.
package githubapi
