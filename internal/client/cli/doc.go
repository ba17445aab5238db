// Package cli is the plantshelf command-line client.
//
// It is a cobra command tree over the client library: account commands
// (signup, signin, signout, whoami, verify-email, reset-password), shelf
// commands under "plants" and privileged commands under "admin", which are
// gated by the admin oracle before any call is made.
//
// A failed command prints one line to stderr,
//
//	add plant failed: invalid-argument — Name is required.
//
// and the process exits with status 1.
package cli
