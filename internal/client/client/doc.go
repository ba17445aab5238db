// Package client is the PlantShelf client library used by the CLI.
//
// # Overview
//
// GRPCClient talks to the backend over the PlantShelf gRPC service. It
// keeps the caller's tokens in a TokenStore, attaches the access token to
// every call and transparently refreshes it once when the server reports
// it expired. Inputs are validated locally before any remote call, using
// the same rules the server applies.
//
// # Error Handling
//
// Failed calls return *Error, which carries the gRPC code and the server's
// message and unwraps to a sentinel from package common, so callers can
// match with errors.Is. Local validation failures are *shelf.ValidationError.
// Code names any of them for display.
//
// # Admin membership
//
// AdminSource adapts the WatchIsAdmin stream and the IsAdmin call to
// adminoracle.Source, so the CLI runs the same observer as the server.
package client
