// Package auth issues and validates the bearer tokens that guard the IPC
// endpoint of a native host.
//
// Tokens are HS256 JWTs signed with a shared secret. A token may be limited
// to a set of bridge commands; an empty set allows every command.
//
//	auth:
//	  enabled: true
//	  secret: "change-me"
//	  ttl: "24h"
//
// The host side validates with TokenService.ValidateToken; the caller side
// obtains a token once with TokenService.Issue and hands it to bridge/ipc.
package auth
