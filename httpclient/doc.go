// Package httpclient is an HTTP client whose requests are serviced by the
// native host through bridge commands instead of a local transport.
//
// Each request becomes three sequential invocations: fetch with the
// normalized request, fetch_send, and fetch_read_body with the body handle
// returned by fetch_send. The body is then decoded according to the
// request's ResponseType.
//
// # Basic Usage
//
//	a, err := httpclient.New(invoker, httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Auth:    httpclient.BearerAuth("my-token"),
//	})
//
//	resp, err := a.Do(ctx, &httpclient.Request{
//	    URL:    "/users",
//	    Params: httpclient.P("page", 2, "q", nil),
//	})
//
// A status outside 2xx yields both the response and an *Error whose Code is
// ERR_BAD_REQUEST (4xx), ERR_BAD_RESPONSE (5xx) or ERR_HTTP_STATUS.
//
// # With net/http
//
//	client := &http.Client{Transport: &httpclient.Transport{Invoker: invoker}}
package httpclient
