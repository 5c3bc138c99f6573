// Package component defines the lifecycle contract shared by the bridge's
// long-running parts (the native host, the IPC server, the adapter) and a
// registry that starts them in order and stops them in reverse.
package component
