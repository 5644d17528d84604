// Package common contains shared constants and sentinel errors used across
// Linekeeper components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// identity token on authenticated requests.
const AuthorizationHeaderName = "Authorization"
