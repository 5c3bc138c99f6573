// Package util holds small helpers shared across nativefetch packages:
// size parsing for config values, secret masking for logs, and generic
// pointer and zero-value helpers.
package util
