// Package bridge defines the contract between an HTTP client running in the
// application and the native host that owns the network stack.
//
// The host exposes named commands. A request is serviced by three sequential
// invocations:
//
//	rid  := invoke("plugin:http|fetch",           {"clientConfig": cc})
//	resp := invoke("plugin:http|fetch_send",      {"rid": rid})
//	body := invoke("plugin:http|fetch_read_body", {"rid": resp.rid})
//
// The host issues a new resource id for the body stream, so the third call
// must use the rid carried in the fetch_send result, never the request rid.
// Results may arrive bare or wrapped in a {"message": ...} envelope; Message
// decodes both.
package bridge
