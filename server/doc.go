// Package server exposes a native host over a local HTTP endpoint so a shell
// in another process can drive it. It is built on Gin behind h2c, so one port
// serves HTTP/1.1 and cleartext HTTP/2.
//
// # Routes
//
//   - POST /ipc/{command}: run a bridge command with a JSON argument object
//   - GET /health: component health
//   - GET /ready: 503 while any component is degraded
//   - GET /version: build information and served commands
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: request logging by status
//   - CORS: webview origins
//   - BodySizeLimit: caps argument bodies
//   - Auth: bearer tokens scoped to commands
//   - RateLimit: per-caller command rate
package server
