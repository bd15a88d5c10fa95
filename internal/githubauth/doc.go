// Package githubauth resolves the secret used to authenticate against the
// GitHub API: token environment variables first (optionally loaded from a
// .env file), falling back to an interactive no-echo password prompt.
package githubauth
