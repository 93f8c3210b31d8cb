// Package common contains shared constants and sentinel errors used across
// Storebox components.
package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on inbound API requests.
const AccessTokenHeaderName = "Authorization"
