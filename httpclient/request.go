package httpclient

import (
	"time"

	"github.com/kbukum/nativefetch/bridge"
)

// undefined is the type of Undefined.
type undefined struct{}

// Undefined marks a parameter or header that is present but has no value.
// Such entries are dropped during normalization. A nil value instead keeps a
// query key without "=" and is sent as the header value "null".
var Undefined any = undefined{}

// Pair is one ordered key/value entry.
type Pair struct {
	Key   string
	Value any
}

// Pairs is an ordered list of entries. Order is preserved on the wire.
type Pairs []Pair

// P builds Pairs from alternating keys and values. A trailing key without a
// value and non-string keys are ignored.
func P(kv ...any) Pairs {
	out := make(Pairs, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = append(out, Pair{Key: key, Value: kv[i+1]})
	}
	return out
}

// Get returns the last value stored under key.
func (p Pairs) Get(key string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return nil, false
}

// ResponseType selects how the response body is exposed in Response.Data.
type ResponseType string

const (
	// ResponseJSON parses the body as JSON, falling back to the raw text.
	// It is also the behavior of the zero value.
	ResponseJSON ResponseType = "json"
	// ResponseText exposes the body as a string.
	ResponseText ResponseType = "text"
	// ResponseBytes exposes the body as a []byte.
	ResponseBytes ResponseType = "arraybuffer"
)

func (t ResponseType) valid() bool {
	switch t {
	case "", ResponseJSON, ResponseText, ResponseBytes:
		return true
	}
	return false
}

// Request describes a single HTTP request serviced through the bridge.
type Request struct {
	// Method is the HTTP method. Empty leaves the choice to the host (GET).
	Method string
	// BaseURL overrides Config.BaseURL when set.
	BaseURL string
	// URL is a path joined to the base URL, or an absolute URL.
	URL string
	// Params are appended to the URL as a query string.
	Params Pairs
	// Headers are sent after the adapter's default headers. Undefined values
	// are dropped and nil becomes "null".
	Headers Pairs
	// Data is the request body. See Adapter.Do for the encoding rules.
	Data any
	// ResponseType selects the shape of Response.Data.
	ResponseType ResponseType
	// Auth overrides Config.Auth for this request.
	Auth *AuthConfig

	// MaxRedirections caps redirects followed by the host. 0 disables them.
	MaxRedirections *int
	// ConnectTimeout bounds connection setup on the host.
	ConnectTimeout time.Duration
	// Proxy routes the request through a proxy on the host.
	Proxy *bridge.Proxy
}

// Response is the normalized result of a request.
type Response struct {
	// Data is the decoded body: parsed JSON, a string, or []byte.
	Data any
	// Status is the HTTP status code.
	Status int
	// StatusText is the canonical reason phrase for Status.
	StatusText string
	// Headers holds one value per name; a repeated header keeps its last value.
	Headers map[string]string
	// Config is the request that produced this response.
	Config *Request
	// URL is the final URL after redirects.
	URL string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true for 2xx statuses.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsError returns true for 4xx and 5xx statuses.
func (r *Response) IsError() bool {
	return r.Status >= 400
}
