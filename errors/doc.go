// Package errors provides the structured error type returned by the native
// host when a bridge command fails. Each AppError carries a machine-readable
// code, the HTTP status used when it crosses the IPC boundary, and a
// retryable flag, and serializes to an RFC 7807 style body.
package errors
