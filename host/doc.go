// Package host is the native side of the bridge. It owns the real network
// stack and services the HTTP plugin commands:
//
//	plugin:http|fetch            start an exchange, return its resource id
//	plugin:http|fetch_send       wait for the response head, return status,
//	                             headers and a new resource id for the body
//	plugin:http|fetch_read_body  read and release the body
//	plugin:http|fetch_cancel     abort a pending exchange or drop a body
//
// Resource ids live in a mutex-guarded table owned by Host. Each exchange
// holds one bulkhead slot from fetch until its body is read or it is
// canceled, which bounds how many exchanges the host keeps open.
//
// A Dispatcher routes command names with JSON arguments to a Host; its
// Invoker method gives in-process callers a bridge.Invoker without IPC.
package host
