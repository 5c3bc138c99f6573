// Package ipc implements bridge.Invoker over the HTTP endpoint served by the
// server package. Each invocation is a POST to /ipc/{command} carrying the
// JSON arguments; error bodies are turned back into *errors.AppError so
// callers see the same failures as with an in-process host.
package ipc
