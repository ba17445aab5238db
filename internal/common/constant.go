// Package common contains shared constants and sentinel errors used across
// PlantShelf components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ChangesChannel is the PostgreSQL NOTIFY channel carrying change topics.
const ChangesChannel = "plantshelf_changes"

// Topic prefixes published on ChangesChannel.
const (
	PlantsTopicPrefix = "plants:"
	AdminsTopicPrefix = "admins:"
)

// PlantsTopic returns the change topic of one user's plant collection.
func PlantsTopic(userID string) string { return PlantsTopicPrefix + userID }

// AdminsTopic returns the change topic of one allowlist entry.
func AdminsTopic(email string) string { return AdminsTopicPrefix + email }
